package echoServer

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/model"
	userrepo "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/repository/user"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/util/apikey"
	jwtutil "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/util/jwt"
)

const principalKey = "principal"

func RegisterMiddlewares(e *echo.Echo) {

	e.Use(middleware.Recover())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	e.Use(Slog())
}

func Slog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			lat := time.Since(start).Milliseconds()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			slog.Info("http",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", lat,
				"req_id", rid,
				"ip", c.RealIP(),
				"ua", c.Request().UserAgent(),
			)
			return err
		}
	}
}

// Principal returns the account attached by one of the credential checks.
func Principal(c echo.Context) *model.User {
	u, _ := c.Get(principalKey).(*model.User)
	return u
}

// LoadPrincipal runs after echo-jwt verified the session token: it loads the
// full account behind the token's id claim and attaches it. A token whose
// account has been deleted since issuance is unauthorized.
func LoadPrincipal(users userrepo.Repo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok, ok := c.Get("user").(*jwt.Token)
			if !ok || tok == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
			}
			mc, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
			}
			claims, err := jwtutil.FromMapClaims(mc)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
			}

			u, err := users.ByID(c.Request().Context(), claims.UserID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
			}
			if u == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid user"})
			}
			c.Set(principalKey, u)
			return next(c)
		}
	}
}

// AdminOnly must run after a session check attached the principal.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := Principal(c)
			if u == nil || !u.IsAdmin() {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Access denied. Admin only."})
			}
			return next(c)
		}
	}
}

// APIKeyAuth resolves the principal from the X-API-Key header. When a session
// token is also present and verifies, its id must match the key's owner; a
// token that fails verification is ignored (the key alone is authoritative).
func APIKeyAuth(keys *apikey.Generator, users userrepo.Repo, jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get("X-API-Key")
			if key == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "API key required in the X-API-Key header"})
			}

			if err := keys.Validate(key); err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid API key format: " + err.Error()})
			}

			u, err := users.ByAPIKey(c.Request().Context(), key)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
			}
			if u == nil {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "API key not recognized"})
			}
			if !u.APIKeyStatus {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "This API key has been disabled by an admin"})
			}

			if auth := c.Request().Header.Get("Authorization"); auth != "" {
				if claims, err := jwtutil.ParseAuth(auth, jwtSecret); err == nil {
					if claims.UserID != u.ID {
						return c.JSON(http.StatusForbidden, echo.Map{"message": "Access denied. You cannot use another user's API key."})
					}
				}
			}

			c.Set(principalKey, u)
			return next(c)
		}
	}
}
