package userrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/model"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/util/database"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByAPIKey(ctx context.Context, key string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id int64) error

	// ReplaceAPIKey swaps in a new key value and forces the status back to
	// enabled, for both self-service regeneration and admin resets.
	ReplaceAPIKey(ctx context.Context, id int64, key string) error
	SetAPIKeyStatus(ctx context.Context, id int64, enabled bool) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const userCols = `id, name, email, password_hash, role, api_key, api_key_status, created_at`

func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO users(name, email, password_hash, role, api_key, api_key_status)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`,
		u.Name, u.Email, u.PasswordHash, u.Role, u.APIKey, u.APIKeyStatus,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.one(ctx, `SELECT `+userCols+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return r.one(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id)
}

func (r *repo) ByAPIKey(ctx context.Context, key string) (*model.User, error) {
	return r.one(ctx, `SELECT `+userCols+` FROM users WHERE api_key = $1`, key)
}

func (r *repo) one(ctx context.Context, q string, arg any) (*model.User, error) {
	u := &model.User{}
	err := r.db.Pool.QueryRow(ctx, q, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.APIKey, &u.APIKeyStatus, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+userCols+`
		FROM users
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.APIKey, &u.APIKeyStatus, &u.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *repo) ReplaceAPIKey(ctx context.Context, id int64, key string) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE users
		SET api_key = $2,
		    api_key_status = TRUE
		WHERE id = $1`, id, key)
	return err
}

func (r *repo) SetAPIKeyStatus(ctx context.Context, id int64, enabled bool) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE users
		SET api_key_status = $2
		WHERE id = $1`, id, enabled)
	return err
}
