package authsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/model"
	userrepo "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/repository/user"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/util/apikey"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/util/hash"
)

type mockRepo struct {
	byEmailFn    func(ctx context.Context, email string) (*model.User, error)
	byIDFn       func(ctx context.Context, id int64) (*model.User, error)
	createFn     func(ctx context.Context, u *model.User) error
	replaceKeyFn func(ctx context.Context, id int64, key string) error
}

var _ userrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, nil
	}
	return m.byEmailFn(ctx, email)
}

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) ByAPIKey(ctx context.Context, key string) (*model.User, error) { return nil, nil }

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}

func (m *mockRepo) List(ctx context.Context) ([]model.User, error) { return nil, nil }
func (m *mockRepo) Delete(ctx context.Context, id int64) error     { return nil }

func (m *mockRepo) ReplaceAPIKey(ctx context.Context, id int64, key string) error {
	if m.replaceKeyFn == nil {
		return nil
	}
	return m.replaceKeyFn(ctx, id, key)
}

func (m *mockRepo) SetAPIKeyStatus(ctx context.Context, id int64, enabled bool) error { return nil }

func testKeys(t *testing.T) *apikey.Generator {
	t.Helper()
	g, err := apikey.New(apikey.Config{Bytes: 16})
	require.NoError(t, err)
	return g
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}
	keys := testKeys(t)
	svc := New(m, keys, "test-secret")

	u, key, err := svc.Register(ctx, model.RegisterReq{
		Name:     "  Alice  ",
		Email:    "ALICE@X.Com",
		Password: "secret1",
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "Alice", u.Name)
	require.Equal(t, "alice@x.com", u.Email)
	require.Equal(t, model.RoleUser, u.Role)
	require.True(t, u.APIKeyStatus)

	require.NotEmpty(t, key)
	require.NoError(t, keys.Validate(key))
	require.NotNil(t, u.APIKey)
	require.Equal(t, key, *u.APIKey)

	require.NotEqual(t, "secret1", u.PasswordHash)
	require.True(t, hash.Check(u.PasswordHash, "secret1"))
}

func TestRegister_BadInput(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{}, testKeys(t), "test-secret")

	cases := []model.RegisterReq{
		{Name: "A", Email: "a@x.com", Password: "secret1"},    // name too short
		{Name: "Alice", Email: "not-email", Password: "longenough"},
		{Name: "Alice", Email: "a@x.com", Password: "12345"},  // password too short
		{Name: "  ", Email: "a@x.com", Password: "secret1"},
	}
	for _, req := range cases {
		_, _, err := svc.Register(ctx, req)
		require.Error(t, err)
		require.Equal(t, ErrBadInput, Code(err))
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 9, Email: email}, nil
		},
	}
	svc := New(m, testKeys(t), "test-secret")

	// case-insensitive: lookup runs on the normalized email
	_, _, err := svc.Register(ctx, model.RegisterReq{
		Name:     "Alice",
		Email:    "TAKEN@Example.com",
		Password: "secret1",
	})
	require.Error(t, err)
	require.Equal(t, ErrEmailTaken, Code(err))
}

func TestRegister_CreateError(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return errors.New("db down")
		},
	}
	svc := New(m, testKeys(t), "test-secret")

	_, _, err := svc.Register(ctx, model.RegisterReq{
		Name:     "Alice",
		Email:    "ok@example.com",
		Password: "secret1",
	})
	require.Error(t, err)
	require.Equal(t, ErrCode(""), Code(err))
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	key := "abc123"
	hashed := mustHash(t, "supersecret")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			require.Equal(t, "user@example.com", email)
			return &model.User{
				ID:           7,
				Name:         "Halim",
				Email:        email,
				PasswordHash: hashed,
				Role:         model.RoleUser,
				APIKey:       &key,
				APIKeyStatus: true,
			}, nil
		},
	}
	svc := New(m, testKeys(t), "test-secret")

	res, err := svc.Login(ctx, model.LoginReq{Email: "User@Example.com", Password: "supersecret"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, model.RoleUser, res.Role)
	require.Equal(t, &key, res.APIKey)
	require.True(t, res.APIKeyStatus)
}

func TestLogin_UserNotFound(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{}, testKeys(t), "test-secret")

	_, err := svc.Login(ctx, model.LoginReq{Email: "missing@example.com", Password: "whatever"})
	require.Error(t, err)
	require.Equal(t, ErrUserNotFound, Code(err))
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()
	hashed := mustHash(t, "correct-password")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 101, Email: email, PasswordHash: hashed, Role: model.RoleUser}, nil
		},
	}
	svc := New(m, testKeys(t), "test-secret")

	_, err := svc.Login(ctx, model.LoginReq{Email: "user@example.com", Password: "wrong-password"})
	require.Error(t, err)
	require.Equal(t, ErrWrongPassword, Code(err))
}

func TestLogin_BadInput(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{}, testKeys(t), "test-secret")

	_, err := svc.Login(ctx, model.LoginReq{Email: " ", Password: ""})
	require.Error(t, err)
	require.Equal(t, ErrBadInput, Code(err))
}

func TestRegenerateAPIKey_Success(t *testing.T) {
	ctx := context.Background()
	old := "oldkey"
	var stored string
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, APIKey: &old, APIKeyStatus: true}, nil
		},
		replaceKeyFn: func(ctx context.Context, id int64, key string) error {
			stored = key
			return nil
		},
	}
	svc := New(m, testKeys(t), "test-secret")

	key, err := svc.RegenerateAPIKey(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, key)
	require.NotEqual(t, old, key)
	require.Equal(t, key, stored)
}

func TestRegenerateAPIKey_Disabled(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, APIKeyStatus: false}, nil
		},
	}
	svc := New(m, testKeys(t), "test-secret")

	_, err := svc.RegenerateAPIKey(ctx, 5)
	require.Error(t, err)
	require.Equal(t, ErrKeyDisabled, Code(err))
}

func TestResetAPIKey_AdminProtected(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Role: model.RoleAdmin}, nil
		},
	}
	svc := New(m, testKeys(t), "test-secret")

	_, _, err := svc.ResetAPIKey(ctx, 1)
	require.Error(t, err)
	require.Equal(t, ErrAdminProtected, Code(err))
}

func TestResetAPIKey_Success(t *testing.T) {
	ctx := context.Background()
	var stored string
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Name: "Bob", Email: "bob@x.com", Role: model.RoleUser, APIKeyStatus: false}, nil
		},
		replaceKeyFn: func(ctx context.Context, id int64, key string) error {
			stored = key
			return nil
		},
	}
	svc := New(m, testKeys(t), "test-secret")

	u, key, err := svc.ResetAPIKey(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, "Bob", u.Name)
	require.Equal(t, key, stored)
}

func TestResetAPIKey_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{}, testKeys(t), "test-secret")

	_, _, err := svc.ResetAPIKey(ctx, 999)
	require.Error(t, err)
	require.Equal(t, ErrUserNotFound, Code(err))
}
