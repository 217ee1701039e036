package loanrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/model"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/util/database"
)

type StatusCounts struct {
	Total    int64                      `json:"total_loans"`
	Active   int64                      `json:"active_loans"`
	Pending  int64                      `json:"pending_loans"`
	Returned int64                      `json:"returned_loans"`
	ByStatus map[model.LoanStatus]int64 `json:"by_status"`
}

type Repo interface {
	Create(ctx context.Context, l *model.Loan) error
	ByID(ctx context.Context, id int64) (*model.LoanWithUser, error)

	// HasOutstanding reports whether the user already has a pending or
	// active loan for the book. Plain read; racy against a concurrent
	// insert for the same pair (no exclusion constraint backs it).
	HasOutstanding(ctx context.Context, userID int64, bookID string) (bool, error)

	ListByUser(ctx context.Context, userID int64, status model.LoanStatus) ([]model.Loan, error)
	ListAll(ctx context.Context, status model.LoanStatus, userID int64) ([]model.LoanWithUser, error)

	UpdateStatus(ctx context.Context, id int64, status model.LoanStatus) error
	SetReturned(ctx context.Context, id int64, returnDate time.Time, notes *string) error

	// DeleteWithNotes records a closing note (when given) and deletes the
	// row, in one transaction.
	DeleteWithNotes(ctx context.Context, id int64, notes *string) error

	Statistics(ctx context.Context) (*StatusCounts, error)
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const loanCols = `id, user_id, book_id, book_title, book_author, book_thumbnail,
	loan_date, due_date, return_date, status, notes, created_at`

func (r *repo) Create(ctx context.Context, l *model.Loan) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO loans(user_id, book_id, book_title, book_author, book_thumbnail,
			loan_date, due_date, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at`,
		l.UserID, l.BookID, l.BookTitle, l.BookAuthor, l.BookThumbnail,
		l.LoanDate, l.DueDate, l.Status, l.Notes,
	).Scan(&l.ID, &l.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.LoanWithUser, error) {
	var lw model.LoanWithUser
	err := r.db.Pool.QueryRow(ctx, `
		SELECT l.id, l.user_id, l.book_id, l.book_title, l.book_author, l.book_thumbnail,
		       l.loan_date, l.due_date, l.return_date, l.status, l.notes, l.created_at,
		       u.name, u.email
		FROM loans l
		JOIN users u ON u.id = l.user_id
		WHERE l.id = $1`, id,
	).Scan(
		&lw.ID, &lw.UserID, &lw.BookID, &lw.BookTitle, &lw.BookAuthor, &lw.BookThumbnail,
		&lw.LoanDate, &lw.DueDate, &lw.ReturnDate, &lw.Status, &lw.Notes, &lw.CreatedAt,
		&lw.UserName, &lw.UserEmail,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lw, nil
}

func (r *repo) HasOutstanding(ctx context.Context, userID int64, bookID string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM loans
			WHERE user_id = $1
			  AND book_id = $2
			  AND status IN ('pending', 'active')
		)`, userID, bookID).Scan(&exists)
	return exists, err
}

func (r *repo) ListByUser(ctx context.Context, userID int64, status model.LoanStatus) ([]model.Loan, error) {
	q := `SELECT ` + loanCols + `
		FROM loans
		WHERE user_id = $1`
	args := []any{userID}
	if status != "" {
		q += ` AND status = $2`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Loan
	for rows.Next() {
		var l model.Loan
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.BookID, &l.BookTitle, &l.BookAuthor, &l.BookThumbnail,
			&l.LoanDate, &l.DueDate, &l.ReturnDate, &l.Status, &l.Notes, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repo) ListAll(ctx context.Context, status model.LoanStatus, userID int64) ([]model.LoanWithUser, error) {
	q := `
		SELECT l.id, l.user_id, l.book_id, l.book_title, l.book_author, l.book_thumbnail,
		       l.loan_date, l.due_date, l.return_date, l.status, l.notes, l.created_at,
		       u.name, u.email
		FROM loans l
		JOIN users u ON u.id = l.user_id
		WHERE 1=1`
	var args []any
	if status != "" {
		args = append(args, status)
		q += ` AND l.status = $1`
	}
	if userID > 0 {
		args = append(args, userID)
		if len(args) == 1 {
			q += ` AND l.user_id = $1`
		} else {
			q += ` AND l.user_id = $2`
		}
	}
	q += ` ORDER BY l.created_at DESC, l.id DESC`

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LoanWithUser
	for rows.Next() {
		var lw model.LoanWithUser
		if err := rows.Scan(
			&lw.ID, &lw.UserID, &lw.BookID, &lw.BookTitle, &lw.BookAuthor, &lw.BookThumbnail,
			&lw.LoanDate, &lw.DueDate, &lw.ReturnDate, &lw.Status, &lw.Notes, &lw.CreatedAt,
			&lw.UserName, &lw.UserEmail,
		); err != nil {
			return nil, err
		}
		out = append(out, lw)
	}
	return out, rows.Err()
}

func (r *repo) UpdateStatus(ctx context.Context, id int64, status model.LoanStatus) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE loans
		SET status = $2
		WHERE id = $1`, id, status)
	return err
}

func (r *repo) SetReturned(ctx context.Context, id int64, returnDate time.Time, notes *string) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE loans
		SET status = 'returned',
		    return_date = $2,
		    notes = COALESCE($3, notes)
		WHERE id = $1`, id, returnDate, notes)
	return err
}

func (r *repo) DeleteWithNotes(ctx context.Context, id int64, notes *string) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if notes != nil {
		if _, err := tx.Exec(ctx, `UPDATE loans SET notes = $2 WHERE id = $1`, id, notes); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM loans WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *repo) Statistics(ctx context.Context) (*StatusCounts, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT status, COUNT(id)
		FROM loans
		GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sc := &StatusCounts{ByStatus: map[model.LoanStatus]int64{}}
	for rows.Next() {
		var st model.LoanStatus
		var n int64
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		sc.ByStatus[st] = n
		sc.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sc.Active = sc.ByStatus[model.LoanActive]
	sc.Pending = sc.ByStatus[model.LoanPending]
	sc.Returned = sc.ByStatus[model.LoanReturned]
	return sc, nil
}

func (r *repo) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE loans
		SET status = 'overdue'
		WHERE status = 'active'
		  AND due_date < $1`, asOf)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
