package loansvc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/model"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/repository/googlebooks"
	loanrepo "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/repository/loan"
)

// errors used by controllers

type ErrCode string

const (
	ErrBadInput        ErrCode = "BAD_INPUT"
	ErrBookNotFound    ErrCode = "BOOK_NOT_FOUND"
	ErrDuplicateLoan   ErrCode = "DUPLICATE_LOAN"
	ErrLoanNotFound    ErrCode = "LOAN_NOT_FOUND"
	ErrAlreadyReturned ErrCode = "ALREADY_RETURNED"
	ErrBadTransition   ErrCode = "BAD_TRANSITION"
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

// transitions is the only place loan status edges are defined. Rejection is
// not listed: it deletes the row instead of moving it, and is legal from
// pending only.
var transitions = map[model.LoanStatus][]model.LoanStatus{
	model.LoanPending: {model.LoanActive},
	model.LoanActive:  {model.LoanReturned, model.LoanOverdue},
	model.LoanOverdue: {model.LoanReturned},
}

func canTransition(from, to model.LoanStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

type Service interface {
	// Request files a pending loan, snapshotting the catalog book. At most
	// one pending-or-active loan per (user, book) pair.
	Request(ctx context.Context, userID int64, bookID string, loanDate, dueDate time.Time, notes *string) (*model.Loan, error)

	MyLoans(ctx context.Context, userID int64, status model.LoanStatus) ([]model.Loan, error)
	AllLoans(ctx context.Context, status model.LoanStatus, userID int64) ([]model.LoanWithUser, error)

	Approve(ctx context.Context, loanID int64) (*model.LoanWithUser, error)
	Reject(ctx context.Context, loanID int64, notes *string) (*model.LoanWithUser, error)
	Return(ctx context.Context, loanID int64, returnDate *time.Time, notes *string) (*model.LoanWithUser, error)

	Statistics(ctx context.Context) (*loanrepo.StatusCounts, error)
}

type service struct {
	r loanrepo.Repo
	g googlebooks.Repo
}

func New(r loanrepo.Repo, g googlebooks.Repo) Service {
	return &service{r: r, g: g}
}

func (s *service) Request(ctx context.Context, userID int64, bookID string, loanDate, dueDate time.Time, notes *string) (*model.Loan, error) {
	if bookID == "" || loanDate.IsZero() || dueDate.IsZero() {
		return nil, makeErr(ErrBadInput)
	}

	book, err := s.g.ByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, makeErr(ErrBookNotFound)
	}

	// Read-then-insert: two simultaneous requests for the same pair can
	// both pass this check. Accepted; see migrations/001_init.sql.
	outstanding, err := s.r.HasOutstanding(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if outstanding {
		return nil, makeErr(ErrDuplicateLoan)
	}

	author := strings.Join(book.Authors, ", ")
	if author == "" {
		author = "Unknown"
	}
	l := &model.Loan{
		UserID:        userID,
		BookID:        bookID,
		BookTitle:     book.Title,
		BookAuthor:    author,
		BookThumbnail: book.Thumbnail,
		LoanDate:      loanDate,
		DueDate:       dueDate,
		Status:        model.LoanPending,
		Notes:         notes,
	}
	if err := s.r.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *service) MyLoans(ctx context.Context, userID int64, status model.LoanStatus) ([]model.Loan, error) {
	return s.r.ListByUser(ctx, userID, status)
}

func (s *service) AllLoans(ctx context.Context, status model.LoanStatus, userID int64) ([]model.LoanWithUser, error) {
	return s.r.ListAll(ctx, status, userID)
}

func (s *service) Approve(ctx context.Context, loanID int64) (*model.LoanWithUser, error) {
	l, err := s.r.ByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, makeErr(ErrLoanNotFound)
	}
	if !canTransition(l.Status, model.LoanActive) {
		return nil, makeErr(ErrBadTransition)
	}
	if err := s.r.UpdateStatus(ctx, loanID, model.LoanActive); err != nil {
		return nil, err
	}
	l.Status = model.LoanActive
	return l, nil
}

func (s *service) Reject(ctx context.Context, loanID int64, notes *string) (*model.LoanWithUser, error) {
	l, err := s.r.ByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, makeErr(ErrLoanNotFound)
	}
	if l.Status != model.LoanPending {
		return nil, makeErr(ErrBadTransition)
	}
	if err := s.r.DeleteWithNotes(ctx, loanID, notes); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *service) Return(ctx context.Context, loanID int64, returnDate *time.Time, notes *string) (*model.LoanWithUser, error) {
	l, err := s.r.ByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, makeErr(ErrLoanNotFound)
	}
	if l.Status == model.LoanReturned {
		return nil, makeErr(ErrAlreadyReturned)
	}
	if !canTransition(l.Status, model.LoanReturned) {
		return nil, makeErr(ErrBadTransition)
	}

	rd := Today()
	if returnDate != nil {
		rd = *returnDate
	}
	if err := s.r.SetReturned(ctx, loanID, rd, notes); err != nil {
		return nil, err
	}
	l.Status = model.LoanReturned
	l.ReturnDate = &rd
	if notes != nil {
		l.Notes = notes
	}
	return l, nil
}

func (s *service) Statistics(ctx context.Context) (*loanrepo.StatusCounts, error) {
	return s.r.Statistics(ctx)
}

// Today is the current date truncated to midnight UTC; loan dates are
// date-only values.
func Today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
