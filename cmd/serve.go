package cmd

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/app/echoServer"
	authctrl "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/app/echoServer/controller/auth"
	bookctrl "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/app/echoServer/controller/book"
	loanctrl "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/app/echoServer/controller/loan"
	userctrl "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/app/echoServer/controller/user"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/app/echoServer/validation"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/config"
	_ "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/docs"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/repository/googlebooks"
	loanrepo "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/repository/loan"
	userrepo "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/repository/user"
	authsvc "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/service/auth"
	booksvc "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/service/book"
	loansvc "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/service/loan"
	usersvc "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/service/user"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/util/apikey"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/util/database"
	"github.com/go-playground/validator/v10"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	keys, err := apikey.New(apikey.Config{
		Prefix:   cfg.APIKeyPrefix,
		Bytes:    cfg.APIKeyBytes,
		Encoding: cfg.APIKeyEncoding,
		Pattern:  cfg.APIKeyPattern,
	})
	if err != nil {
		log.Error("api key config invalid", "err", err)
		return err
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return err
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	lr := loanrepo.New(db)
	gb := googlebooks.NewHTTP(cfg.BooksAPIURL)

	// services
	as := authsvc.New(ur, keys, cfg.JWTSecret)
	ls := loansvc.New(lr, gb)
	us := usersvc.New(ur)
	bs := booksvc.New(gb)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log, Principal: echoServer.Principal}
	loanC := &loanctrl.Controller{Svc: ls, V: v, Log: log, Principal: echoServer.Principal}
	bookC := &bookctrl.Controller{Svc: bs, Log: log}
	userC := &userctrl.Controller{Svc: us, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth: authC,
		Book: bookC,
		Loan: loanC,
		User: userC,

		JWTSecret: cfg.JWTSecret,
		Keys:      keys,
		Users:     ur,
	})

	// daily overdue sweep
	sweep := loansvc.NewSweeper(lr)
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			n, err := sweep.MarkOverdue(ctx)
			if err != nil {
				log.Error("overdue sweep failed", "err", err)
			} else if n > 0 {
				log.Info("overdue sweep", "marked", n)
			}
			<-ticker.C
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)
	return e.Start(":" + port)
}
