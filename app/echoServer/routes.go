package echoServer

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/app/echoServer/controller/auth"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/app/echoServer/controller/book"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/app/echoServer/controller/loan"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/app/echoServer/controller/user"
	userrepo "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/repository/user"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/util/apikey"
)

type C struct {
	Auth *auth.Controller
	Book *book.Controller
	Loan *loan.Controller
	User *user.Controller

	JWTSecret string
	Keys      *apikey.Generator
	Users     userrepo.Repo
}

func Register(e *echo.Echo, c C) {
	api := e.Group("/api")

	api.GET("/health", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, echo.Map{"status": "OK"})
	})

	session := []echo.MiddlewareFunc{
		echojwt.WithConfig(jwtConfig(c.JWTSecret)),
		LoadPrincipal(c.Users),
	}
	apiKey := APIKeyAuth(c.Keys, c.Users, c.JWTSecret)

	// Auth
	api.POST("/auth/register", c.Auth.Register)
	api.POST("/auth/login", c.Auth.Login)
	api.POST("/auth/regenerate-api-key", c.Auth.RegenerateAPIKey, session...)
	api.POST("/auth/reset-api-key/:userId", c.Auth.ResetAPIKey, append(session, AdminOnly())...)

	// Public catalog passthrough. Static segments before :bookId.
	books := api.Group("/books")
	books.GET("/categories", c.Book.Categories)
	books.GET("/search", c.Book.Search)
	books.GET("/statistics", c.Book.Statistics)
	books.GET("/category/:categoryName", c.Book.ByCategory)
	books.GET("/:bookId", c.Book.Detail)

	// Loans: users act through their API key, admins through a session.
	api.POST("/loans", c.Loan.Create, apiKey)
	api.GET("/loans/my-loans", c.Loan.MyLoans, apiKey)

	adminLoans := api.Group("/loans", append(session, AdminOnly())...)
	adminLoans.GET("/all", c.Loan.All)
	adminLoans.GET("/statistics", c.Loan.Statistics)
	adminLoans.PATCH("/:id/approve", c.Loan.Approve)
	adminLoans.PATCH("/:id/return", c.Loan.Return)
	adminLoans.DELETE("/:id/reject", c.Loan.Reject)

	// Account management
	adminUsers := api.Group("/admin/users", append(session, AdminOnly())...)
	adminUsers.GET("", c.User.List)
	adminUsers.DELETE("/:id", c.User.Delete)
	adminUsers.PATCH("/:id/toggle-api-key", c.User.ToggleAPIKey)

	// API-key smoke check
	api.GET("/test/apikey", func(ctx echo.Context) error {
		u := Principal(ctx)
		return ctx.JSON(http.StatusOK, echo.Map{
			"message": "API key valid",
			"user": echo.Map{
				"id":    u.ID,
				"name":  u.Name,
				"email": u.Email,
				"role":  u.Role,
			},
		})
	}, apiKey)

	e.RouteNotFound("/api/*", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusNotFound, echo.Map{
			"status":  "Error",
			"message": "API endpoint not found",
		})
	})
}

func jwtConfig(secret string) echojwt.Config {
	return echojwt.Config{
		SigningKey:    []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization:Bearer ",
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, echojwt.ErrJWTMissing) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Missing token"})
			}
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
		},
	}
}
