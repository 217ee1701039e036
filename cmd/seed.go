package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/config"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/model"
	userrepo "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/repository/user"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/util/database"
	"github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/util/hash"
)

var (
	seedEmail    string
	seedPassword string
	seedName     string
)

// Admin accounts are not created through registration; they carry no API key
// and are exempt from the admin-management endpoints.
var seedCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the admin account if it does not exist",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedEmail, "email", "admin@library.local", "admin email")
	seedCmd.Flags().StringVar(&seedPassword, "password", "admin123", "admin password")
	seedCmd.Flags().StringVar(&seedName, "name", "Admin", "admin display name")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	ur := userrepo.New(db)

	existing, err := ur.ByEmail(ctx, seedEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		fmt.Println("admin already exists:", seedEmail)
		return nil
	}

	hashed, err := hash.HashPassword(seedPassword)
	if err != nil {
		return err
	}
	u := &model.User{
		Name:         seedName,
		Email:        seedEmail,
		PasswordHash: hashed,
		Role:         model.RoleAdmin,
		APIKeyStatus: true,
	}
	if err := ur.Create(ctx, u); err != nil {
		return err
	}
	fmt.Println("admin created:", seedEmail)
	return nil
}
