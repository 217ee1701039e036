package echoServer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/model"
	userrepo "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/repository/user"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/util/apikey"
	jwtutil "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/util/jwt"
)

const testSecret = "middleware-test-secret"

type mockUsers struct {
	byIDFn     func(ctx context.Context, id int64) (*model.User, error)
	byAPIKeyFn func(ctx context.Context, key string) (*model.User, error)
}

var _ userrepo.Repo = (*mockUsers)(nil)

func (m *mockUsers) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}

func (m *mockUsers) ByAPIKey(ctx context.Context, key string) (*model.User, error) {
	if m.byAPIKeyFn == nil {
		return nil, nil
	}
	return m.byAPIKeyFn(ctx, key)
}

func (m *mockUsers) ByEmail(ctx context.Context, email string) (*model.User, error) { return nil, nil }
func (m *mockUsers) Create(ctx context.Context, u *model.User) error                { return nil }
func (m *mockUsers) List(ctx context.Context) ([]model.User, error)                 { return nil, nil }
func (m *mockUsers) Delete(ctx context.Context, id int64) error                     { return nil }
func (m *mockUsers) ReplaceAPIKey(ctx context.Context, id int64, key string) error  { return nil }
func (m *mockUsers) SetAPIKeyStatus(ctx context.Context, id int64, enabled bool) error {
	return nil
}

func okHandler(c echo.Context) error {
	u := Principal(c)
	name := ""
	if u != nil {
		name = u.Name
	}
	return c.JSON(http.StatusOK, echo.Map{"principal": name})
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, setup func(req *http.Request, c echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(req, c)
	}
	err := mw(okHandler)(c)
	require.NoError(t, err)
	return rec
}

func testGen(t *testing.T) *apikey.Generator {
	t.Helper()
	g, err := apikey.New(apikey.Config{Bytes: 16})
	require.NoError(t, err)
	return g
}

// --- APIKeyAuth ---

func keyOwner(key string) *model.User {
	return &model.User{ID: 7, Name: "Alice", Role: model.RoleUser, APIKey: &key, APIKeyStatus: true}
}

func usersWithKey(owner *model.User) *mockUsers {
	return &mockUsers{
		byAPIKeyFn: func(ctx context.Context, key string) (*model.User, error) {
			if owner != nil && owner.APIKey != nil && *owner.APIKey == key {
				return owner, nil
			}
			return nil, nil
		},
	}
}

func TestAPIKeyAuth_MissingHeader(t *testing.T) {
	mw := APIKeyAuth(testGen(t), &mockUsers{}, testSecret)
	rec := doRequest(t, mw, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "API key required")
}

func TestAPIKeyAuth_BadFormat(t *testing.T) {
	g, err := apikey.New(apikey.Config{Prefix: "lib_", Bytes: 16})
	require.NoError(t, err)
	mw := APIKeyAuth(g, &mockUsers{}, testSecret)

	rec := doRequest(t, mw, func(req *http.Request, c echo.Context) {
		req.Header.Set("X-API-Key", "wrongprefix_abc")
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid API key format")
}

func TestAPIKeyAuth_UnknownKey(t *testing.T) {
	mw := APIKeyAuth(testGen(t), usersWithKey(nil), testSecret)

	rec := doRequest(t, mw, func(req *http.Request, c echo.Context) {
		req.Header.Set("X-API-Key", "abcdef0123456789")
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "not recognized")
}

func TestAPIKeyAuth_DisabledKey(t *testing.T) {
	key := "abcdef0123456789"
	owner := keyOwner(key)
	owner.APIKeyStatus = false
	mw := APIKeyAuth(testGen(t), usersWithKey(owner), testSecret)

	rec := doRequest(t, mw, func(req *http.Request, c echo.Context) {
		req.Header.Set("X-API-Key", key)
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "disabled")
}

func TestAPIKeyAuth_Success(t *testing.T) {
	key := "abcdef0123456789"
	mw := APIKeyAuth(testGen(t), usersWithKey(keyOwner(key)), testSecret)

	rec := doRequest(t, mw, func(req *http.Request, c echo.Context) {
		req.Header.Set("X-API-Key", key)
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Alice")
}

func TestAPIKeyAuth_TokenOwnerMatch(t *testing.T) {
	key := "abcdef0123456789"
	tok, err := jwtutil.Issue(testSecret, 7, "user", "Alice", 24)
	require.NoError(t, err)
	mw := APIKeyAuth(testGen(t), usersWithKey(keyOwner(key)), testSecret)

	rec := doRequest(t, mw, func(req *http.Request, c echo.Context) {
		req.Header.Set("X-API-Key", key)
		req.Header.Set("Authorization", "Bearer "+tok)
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyAuth_TokenOwnerMismatch(t *testing.T) {
	key := "abcdef0123456789"
	tok, err := jwtutil.Issue(testSecret, 99, "user", "Mallory", 24)
	require.NoError(t, err)
	mw := APIKeyAuth(testGen(t), usersWithKey(keyOwner(key)), testSecret)

	rec := doRequest(t, mw, func(req *http.Request, c echo.Context) {
		req.Header.Set("X-API-Key", key)
		req.Header.Set("Authorization", "Bearer "+tok)
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "another user's API key")
}

func TestAPIKeyAuth_UnverifiableTokenIgnored(t *testing.T) {
	key := "abcdef0123456789"
	mw := APIKeyAuth(testGen(t), usersWithKey(keyOwner(key)), testSecret)

	rec := doRequest(t, mw, func(req *http.Request, c echo.Context) {
		req.Header.Set("X-API-Key", key)
		req.Header.Set("Authorization", "Bearer not.a.token")
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

// --- AdminOnly ---

func TestAdminOnly_NoPrincipal(t *testing.T) {
	rec := doRequest(t, AdminOnly(), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminOnly_RegularUser(t *testing.T) {
	rec := doRequest(t, AdminOnly(), func(req *http.Request, c echo.Context) {
		c.Set(principalKey, &model.User{ID: 7, Role: model.RoleUser})
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "Admin only")
}

func TestAdminOnly_Admin(t *testing.T) {
	rec := doRequest(t, AdminOnly(), func(req *http.Request, c echo.Context) {
		c.Set(principalKey, &model.User{ID: 1, Name: "Root", Role: model.RoleAdmin})
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

// --- LoadPrincipal ---

func sessionToken(t *testing.T, userID int64) *jwt.Token {
	t.Helper()
	signed, err := jwtutil.Issue(testSecret, userID, "user", "Alice", 24)
	require.NoError(t, err)
	tok, err := jwt.Parse(signed, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	return tok
}

func TestLoadPrincipal_Success(t *testing.T) {
	users := &mockUsers{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			require.Equal(t, int64(7), id)
			return &model.User{ID: id, Name: "Alice", Role: model.RoleUser}, nil
		},
	}
	rec := doRequest(t, LoadPrincipal(users), func(req *http.Request, c echo.Context) {
		c.Set("user", sessionToken(t, 7))
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Alice")
}

func TestLoadPrincipal_AccountGone(t *testing.T) {
	rec := doRequest(t, LoadPrincipal(&mockUsers{}), func(req *http.Request, c echo.Context) {
		c.Set("user", sessionToken(t, 7))
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid user")
}

func TestLoadPrincipal_NoToken(t *testing.T) {
	rec := doRequest(t, LoadPrincipal(&mockUsers{}), nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid token")
}
