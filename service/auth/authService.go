package authsvc

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/model"
	userrepo "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/repository/user"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/util/apikey"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/util/hash"
	jwtutil "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/util/jwt"
)

// errors used by controllers

type ErrCode string

const (
	ErrBadInput       ErrCode = "BAD_INPUT"
	ErrEmailTaken     ErrCode = "EMAIL_TAKEN"
	ErrUserNotFound   ErrCode = "USER_NOT_FOUND"
	ErrWrongPassword  ErrCode = "WRONG_PASSWORD"
	ErrKeyDisabled    ErrCode = "KEY_DISABLED"
	ErrAdminProtected ErrCode = "ADMIN_PROTECTED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// LoginResult is what the login endpoint hands back besides the message.
type LoginResult struct {
	Token        string
	Role         model.Role
	APIKey       *string
	APIKeyStatus bool
}

type Service interface {
	// Register creates the account and returns the plaintext API key. The
	// key is never retrievable again through this interface.
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*LoginResult, error)

	// RegenerateAPIKey rotates the caller's own key; refused while the key
	// is disabled by an admin.
	RegenerateAPIKey(ctx context.Context, userID int64) (string, error)

	// ResetAPIKey is the admin-forced rotation; admin accounts are exempt.
	ResetAPIKey(ctx context.Context, targetID int64) (*model.User, string, error)
}

type service struct {
	ur     userrepo.Repo
	keys   *apikey.Generator
	secret string
}

func New(ur userrepo.Repo, keys *apikey.Generator, jwtSecret string) Service {
	return &service{ur: ur, keys: keys, secret: jwtSecret}
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if len(name) < 2 || !emailRe.MatchString(email) || len(req.Password) < 6 {
		return nil, "", makeErr(ErrBadInput)
	}

	if existing, err := s.ur.ByEmail(ctx, email); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", makeErr(ErrEmailTaken)
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}
	key, err := s.keys.Generate()
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         model.RoleUser,
		APIKey:       &key,
		APIKeyStatus: true,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, "", derr
		}
		return nil, "", err
	}
	return u, key, nil
}

// mapDuplicateErr turns a unique-violation from the store into the coded
// error for the column that collided. The pre-insert existence check above
// is racy; the constraint is what actually holds the invariant.
func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		cn := strings.ToLower(pgErr.ConstraintName)
		msg := strings.ToLower(pgErr.Message)
		if strings.Contains(cn, "users_email") || strings.Contains(msg, "email") {
			return makeErr(ErrEmailTaken)
		}
		return makeErr(ErrBadInput)
	}
	return nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*LoginResult, error) {
	email := normalizeEmail(req.Email)
	if !emailRe.MatchString(email) || req.Password == "" {
		return nil, makeErr(ErrBadInput)
	}

	u, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrUserNotFound)
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, makeErr(ErrWrongPassword)
	}

	token, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), u.Name, 24)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:        token,
		Role:         u.Role,
		APIKey:       u.APIKey,
		APIKeyStatus: u.APIKeyStatus,
	}, nil
}

func (s *service) RegenerateAPIKey(ctx context.Context, userID int64) (string, error) {
	u, err := s.ur.ByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", makeErr(ErrUserNotFound)
	}
	if !u.APIKeyStatus {
		return "", makeErr(ErrKeyDisabled)
	}

	key, err := s.keys.Generate()
	if err != nil {
		return "", err
	}
	if err := s.ur.ReplaceAPIKey(ctx, userID, key); err != nil {
		return "", err
	}
	return key, nil
}

func (s *service) ResetAPIKey(ctx context.Context, targetID int64) (*model.User, string, error) {
	u, err := s.ur.ByID(ctx, targetID)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", makeErr(ErrUserNotFound)
	}
	if u.IsAdmin() {
		return nil, "", makeErr(ErrAdminProtected)
	}

	key, err := s.keys.Generate()
	if err != nil {
		return nil, "", err
	}
	if err := s.ur.ReplaceAPIKey(ctx, targetID, key); err != nil {
		return nil, "", err
	}
	return u, key, nil
}
