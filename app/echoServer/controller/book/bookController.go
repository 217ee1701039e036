package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	booksvc "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/service/book"
)

type Controller struct {
	Svc booksvc.Service
	Log *slog.Logger
}

// GET /api/books/search?q=...&page=1&limit=20
func (h *Controller) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "Error", "message": "Search query (q) is required"})
	}
	page, limit := paging(c)

	res, err := h.Svc.Search(c.Request().Context(), q, limit, (page-1)*limit)
	if err != nil {
		h.Log.Error("book search failed", "err", err, "q", q)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "Error", "message": "Failed to fetch catalog data"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":     "Success",
		"message":    "Books found",
		"query":      q,
		"page":       page,
		"limit":      limit,
		"totalItems": res.TotalItems,
		"data":       res.Items,
	})
}

// GET /api/books/:bookId
func (h *Controller) Detail(c echo.Context) error {
	id := c.Param("bookId")

	b, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("book detail failed", "err", err, "book_id", id)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "Error", "message": "Failed to fetch catalog data"})
	}
	if b == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"status": "Error", "message": "Book not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "Success",
		"message": "Book details",
		"data":    b,
	})
}

// GET /api/books/category/:categoryName?page=1&limit=20
func (h *Controller) ByCategory(c echo.Context) error {
	category := c.Param("categoryName")
	page, limit := paging(c)

	res, err := h.Svc.ByCategory(c.Request().Context(), category, limit, (page-1)*limit)
	if err != nil {
		h.Log.Error("book category failed", "err", err, "category", category)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "Error", "message": "Failed to fetch category data"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":     "Success",
		"message":    "Books in category " + category,
		"category":   category,
		"page":       page,
		"limit":      limit,
		"totalItems": res.TotalItems,
		"data":       res.Items,
	})
}

// GET /api/books/categories
func (h *Controller) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "Success",
		"message": "Book categories",
		"data":    h.Svc.Categories(),
	})
}

// GET /api/books/statistics
func (h *Controller) Statistics(c echo.Context) error {
	stats, err := h.Svc.Statistics(c.Request().Context())
	if err != nil {
		h.Log.Error("book statistics failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "Error", "message": "Failed to fetch statistics"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "Success",
		"message": "Catalog statistics",
		"data":    stats,
	})
}

func paging(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 40 {
		limit = 20
	}
	return page, limit
}
