package model

import "time"

type LoanStatus string

const (
	LoanPending  LoanStatus = "pending"
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"
	LoanOverdue  LoanStatus = "overdue"
)

// Loan carries a snapshot of the catalog book taken when the loan was
// requested. The snapshot is never refreshed from the catalog.
type Loan struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	BookID        string     `json:"book_id"`
	BookTitle     string     `json:"book_title"`
	BookAuthor    string     `json:"book_author"`
	BookThumbnail *string    `json:"book_thumbnail,omitempty"`
	LoanDate      time.Time  `json:"loan_date"`
	DueDate       time.Time  `json:"due_date"`
	ReturnDate    *time.Time `json:"return_date,omitempty"`
	Status        LoanStatus `json:"status"`
	Notes         *string    `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// LoanWithUser is the admin listing row.
type LoanWithUser struct {
	Loan
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}
