package user

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	usersvc "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/service/user"
)

type Controller struct {
	Svc usersvc.Service
	Log *slog.Logger
}

// GET /api/admin/users
func (h *Controller) List(c echo.Context) error {
	users, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("user list failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "Success",
		"message": "All users",
		"data":    users,
	})
}

// DELETE /api/admin/users/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}

	if _, err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		switch usersvc.Code(err) {
		case usersvc.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		case usersvc.ErrAdminProtected:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "Cannot delete an admin account"})
		default:
			h.Log.Error("user delete failed", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "Success",
		"message": "User deleted",
	})
}

// PATCH /api/admin/users/:id/toggle-api-key
func (h *Controller) ToggleAPIKey(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}

	u, err := h.Svc.ToggleAPIKey(c.Request().Context(), id)
	if err != nil {
		switch usersvc.Code(err) {
		case usersvc.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		case usersvc.ErrAdminProtected:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "Cannot change an admin's API key status"})
		default:
			h.Log.Error("toggle api key failed", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
		}
	}

	msg := "API key disabled"
	if u.APIKeyStatus {
		msg = "API key enabled"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "Success",
		"message": msg,
		"data": echo.Map{
			"id":             u.ID,
			"name":           u.Name,
			"email":          u.Email,
			"api_key_status": u.APIKeyStatus,
		},
	})
}
