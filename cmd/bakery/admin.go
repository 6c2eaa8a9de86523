package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/bakery/internal/config"
	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/internal/repo"
	"github.com/Skotchmaster/bakery/internal/service"
	pkgconfig "github.com/Skotchmaster/bakery/pkg/config"
	pkgdb "github.com/Skotchmaster/bakery/pkg/db"
	"github.com/Skotchmaster/bakery/pkg/logging"
)

var (
	adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "Administrative maintenance commands",
	}
	promoteCmd = &cobra.Command{
		Use:   "promote",
		Short: "Grant a role to an account, creating it when missing",
		Args:  cobra.NoArgs,
		RunE:  runPromote,
	}

	promoteEmail string
	promoteRole  string
)

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(promoteCmd)
	promoteCmd.Flags().StringVar(&promoteEmail, "email", "", "account email")
	promoteCmd.Flags().StringVar(&promoteRole, "role", string(models.RoleAdmin), "role to grant (admin or driver)")
	_ = promoteCmd.MarkFlagRequired("email")
}

func runPromote(cmd *cobra.Command, _ []string) error {
	role := models.Role(promoteRole)
	if role != models.RoleAdmin && role != models.RoleDriver {
		return fmt.Errorf("role must be admin or driver, got %q", promoteRole)
	}

	cfg := config.FromEnv()
	pkgconfig.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	logger := logging.New(cfg.LogLevel)
	ctx := logging.IntoContext(cmd.Context(), logger)

	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pkgdb.Close(db)

	r := repo.New(db)
	if err := r.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	svc := &service.UserService{Users: r, Orders: r}
	u, created, err := svc.Grant(ctx, promoteEmail, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "user %d <%s> is now %s (created: %t)\n", u.ID, u.Email, u.Role, created)
	return nil
}
