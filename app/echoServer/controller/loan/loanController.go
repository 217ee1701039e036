package loan

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/model"
	loansvc "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/service/loan"
)

const dateLayout = "2006-01-02"

type Controller struct {
	Svc loansvc.Service
	V   *validator.Validate
	Log *slog.Logger

	Principal func(echo.Context) *model.User
}

// Create files a loan request on behalf of the API-key owner.
// @Summary      Request a loan
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateLoanReq  true  "Loan request"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/loans [post]
func (h *Controller) Create(c echo.Context) error {
	var req CreateLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "book_id, loan_date and due_date are required"})
	}
	loanDate, err := time.Parse(dateLayout, req.LoanDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "loan_date must be YYYY-MM-DD"})
	}
	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "due_date must be YYYY-MM-DD"})
	}

	u := h.Principal(c)
	l, err := h.Svc.Request(c.Request().Context(), u.ID, req.BookID, loanDate, dueDate, req.Notes)
	if err != nil {
		switch loansvc.Code(err) {
		case loansvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "book_id, loan_date and due_date are required"})
		case loansvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"status": "Error", "message": "Book not found in the catalog"})
		case loansvc.ErrDuplicateLoan:
			return c.JSON(http.StatusBadRequest, echo.Map{"status": "Error", "message": "You already borrowed this book and have not returned it"})
		default:
			h.Log.Error("loan create failed", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"status":  "Success",
		"message": "Loan requested. Waiting for admin approval.",
		"data": echo.Map{
			"loan_id":     l.ID,
			"book_title":  l.BookTitle,
			"book_author": l.BookAuthor,
			"loan_date":   l.LoanDate.Format(dateLayout),
			"due_date":    l.DueDate.Format(dateLayout),
			"status":      l.Status,
		},
	})
}

// MyLoans lists the API-key owner's loans, optionally filtered by status.
// @Summary      List own loans
// @Tags         loans
// @Produce      json
// @Param        status  query  string  false  "status filter"
// @Success      200  {object}  map[string]any
// @Router       /api/loans/my-loans [get]
func (h *Controller) MyLoans(c echo.Context) error {
	u := h.Principal(c)
	status := model.LoanStatus(c.QueryParam("status"))

	rows, err := h.Svc.MyLoans(c.Request().Context(), u.ID, status)
	if err != nil {
		h.Log.Error("my loans failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "Success",
		"message": "Your loans",
		"user":    u.Name,
		"total":   len(rows),
		"data":    rows,
	})
}

// All is the admin listing across users.
// @Summary      List all loans (admin)
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        status   query  string  false  "status filter"
// @Param        user_id  query  int     false  "user filter"
// @Success      200  {object}  map[string]any
// @Router       /api/loans/all [get]
func (h *Controller) All(c echo.Context) error {
	status := model.LoanStatus(c.QueryParam("status"))
	var userID int64
	if v := c.QueryParam("user_id"); v != "" {
		userID, _ = strconv.ParseInt(v, 10, 64)
	}

	rows, err := h.Svc.AllLoans(c.Request().Context(), status, userID)
	if err != nil {
		h.Log.Error("all loans failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "Success",
		"message": "All loans",
		"total":   len(rows),
		"data":    rows,
	})
}

// Approve moves a pending loan to active.
// @Summary      Approve a loan (admin)
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "loan id"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/loans/{id}/approve [patch]
func (h *Controller) Approve(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}

	l, err := h.Svc.Approve(c.Request().Context(), id)
	if err != nil {
		switch loansvc.Code(err) {
		case loansvc.ErrLoanNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"status": "Error", "message": "Loan not found"})
		case loansvc.ErrBadTransition:
			return c.JSON(http.StatusBadRequest, echo.Map{"status": "Error", "message": "Loan is not pending"})
		default:
			h.Log.Error("loan approve failed", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "Success",
		"message": "Loan approved",
		"data": echo.Map{
			"loan_id":    l.ID,
			"user":       l.UserName,
			"book_title": l.BookTitle,
			"status":     l.Status,
		},
	})
}

// Reject deletes a pending loan, optionally recording a closing note first.
// The row is gone afterwards; rejection history is not kept.
// @Summary      Reject a loan (admin)
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "loan id"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/loans/{id}/reject [delete]
func (h *Controller) Reject(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	var req RejectLoanReq
	_ = c.Bind(&req) // body is optional on DELETE

	l, err := h.Svc.Reject(c.Request().Context(), id, req.Notes)
	if err != nil {
		switch loansvc.Code(err) {
		case loansvc.ErrLoanNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"status": "Error", "message": "Loan not found"})
		case loansvc.ErrBadTransition:
			return c.JSON(http.StatusBadRequest, echo.Map{"status": "Error", "message": "Loan is not pending"})
		default:
			h.Log.Error("loan reject failed", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "Success",
		"message": "Loan rejected and removed",
		"data": echo.Map{
			"loan_id":    l.ID,
			"user":       l.UserName,
			"book_title": l.BookTitle,
		},
	})
}

// Return marks an active (or overdue) loan returned.
// @Summary      Return a book (admin)
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int            true   "loan id"
// @Param        payload  body  ReturnLoanReq  false  "return date and notes"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/loans/{id}/return [patch]
func (h *Controller) Return(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	var req ReturnLoanReq
	_ = c.Bind(&req) // body is optional

	var returnDate *time.Time
	if req.ReturnDate != "" {
		rd, err := time.Parse(dateLayout, req.ReturnDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "return_date must be YYYY-MM-DD"})
		}
		returnDate = &rd
	}

	l, err := h.Svc.Return(c.Request().Context(), id, returnDate, req.Notes)
	if err != nil {
		switch loansvc.Code(err) {
		case loansvc.ErrLoanNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"status": "Error", "message": "Loan not found"})
		case loansvc.ErrAlreadyReturned:
			return c.JSON(http.StatusBadRequest, echo.Map{"status": "Error", "message": "Book already returned"})
		case loansvc.ErrBadTransition:
			return c.JSON(http.StatusBadRequest, echo.Map{"status": "Error", "message": "Only borrowed books can be returned"})
		default:
			h.Log.Error("loan return failed", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "Success",
		"message": "Book returned",
		"data": echo.Map{
			"loan_id":     l.ID,
			"user":        l.UserName,
			"book_title":  l.BookTitle,
			"loan_date":   l.LoanDate.Format(dateLayout),
			"due_date":    l.DueDate.Format(dateLayout),
			"return_date": l.ReturnDate.Format(dateLayout),
			"status":      l.Status,
		},
	})
}

// Statistics is the derived per-status breakdown.
// @Summary      Loan statistics (admin)
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /api/loans/statistics [get]
func (h *Controller) Statistics(c echo.Context) error {
	stats, err := h.Svc.Statistics(c.Request().Context())
	if err != nil {
		h.Log.Error("loan statistics failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "Success",
		"message": "Loan statistics",
		"data":    stats,
	})
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.ErrBadRequest
	}
	return id, nil
}
