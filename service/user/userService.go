package usersvc

import (
	"context"
	"errors"

	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/model"
	userrepo "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/repository/user"
)

type ErrCode string

const (
	ErrUserNotFound   ErrCode = "USER_NOT_FOUND"
	ErrAdminProtected ErrCode = "ADMIN_PROTECTED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Service is the admin account-management surface. Admin accounts are exempt
// from deletion and key-status changes.
type Service interface {
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id int64) (*model.User, error)
	ToggleAPIKey(ctx context.Context, id int64) (*model.User, error)
}

type service struct{ ur userrepo.Repo }

func New(ur userrepo.Repo) Service { return &service{ur} }

func (s *service) List(ctx context.Context) ([]model.User, error) {
	return s.ur.List(ctx)
}

func (s *service) Delete(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.ur.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrUserNotFound)
	}
	if u.IsAdmin() {
		return nil, makeErr(ErrAdminProtected)
	}
	if err := s.ur.Delete(ctx, id); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) ToggleAPIKey(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.ur.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrUserNotFound)
	}
	if u.IsAdmin() {
		return nil, makeErr(ErrAdminProtected)
	}

	newStatus := !u.APIKeyStatus
	if err := s.ur.SetAPIKeyStatus(ctx, id, newStatus); err != nil {
		return nil, err
	}
	u.APIKeyStatus = newStatus
	return u, nil
}
