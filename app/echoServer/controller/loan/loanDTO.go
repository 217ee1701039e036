package loan

type CreateLoanReq struct {
	BookID   string  `json:"book_id" validate:"required"`
	LoanDate string  `json:"loan_date" validate:"required"`
	DueDate  string  `json:"due_date" validate:"required"`
	Notes    *string `json:"notes"`
}

type ReturnLoanReq struct {
	ReturnDate string  `json:"return_date"`
	Notes      *string `json:"notes"`
}

type RejectLoanReq struct {
	Notes *string `json:"notes"`
}
