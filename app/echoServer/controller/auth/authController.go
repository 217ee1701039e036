package auth

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/model"
	authsvc "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/service/auth"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger

	// Principal is how the controller reads the authenticated account off
	// the request; injected to keep the package free of middleware imports.
	Principal func(echo.Context) *model.User
}

// Register a new user
// @Summary      Register user
// @Description  Create an account; the API key is returned once and never again
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /api/auth/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid body"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation error: name min 2 chars, valid email, password min 6 chars"})
	}

	_, key, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrEmailTaken:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email already registered"})
		case authsvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid registration data"})
		default:
			ct.Log.Error("register failed", "err", err, "req_id", reqID(c))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Registration failed"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Registration successful",
		"api_key": key,
	})
}

// Login
// @Summary      Login
// @Description  Login with email and password, returns a session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/auth/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid body"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation error"})
	}

	res, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid login data"})
		case authsvc.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		case authsvc.ErrWrongPassword:
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Wrong password"})
		default:
			ct.Log.Error("login failed", "err", err, "req_id", reqID(c))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Login failed"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":        "Login successful",
		"token":          res.Token,
		"role":           res.Role,
		"api_key":        res.APIKey,
		"api_key_status": res.APIKeyStatus,
	})
}

// RegenerateAPIKey rotates the caller's own key (session required).
// @Summary      Regenerate own API key
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /api/auth/regenerate-api-key [post]
func (ct *Controller) RegenerateAPIKey(c echo.Context) error {
	u := ct.Principal(c)

	key, err := ct.Svc.RegenerateAPIKey(c.Request().Context(), u.ID)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		case authsvc.ErrKeyDisabled:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "Your API key is disabled by an admin. It cannot be regenerated until re-enabled."})
		default:
			ct.Log.Error("regenerate api key failed", "err", err, "req_id", reqID(c))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Regenerate failed"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "Success",
		"message": "New API key created",
		"api_key": key,
	})
}

// ResetAPIKey is the admin-forced rotation of another user's key.
// @Summary      Reset a user's API key (admin)
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path  int  true  "target user id"
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /api/auth/reset-api-key/{userId} [post]
func (ct *Controller) ResetAPIKey(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid user id"})
	}

	u, key, err := ct.Svc.ResetAPIKey(c.Request().Context(), id)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		case authsvc.ErrAdminProtected:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "Cannot reset an admin's API key"})
		default:
			ct.Log.Error("reset api key failed", "err", err, "req_id", reqID(c))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Reset failed"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "Success",
		"message": "API key for user " + u.Name + " has been reset",
		"data": echo.Map{
			"user_id":     u.ID,
			"name":        u.Name,
			"email":       u.Email,
			"new_api_key": key,
		},
	})
}

func reqID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
