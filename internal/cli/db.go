package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Jahir7946/Cat-store/config"
)

func NewSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "seed",
		Short:         "Insert the bundled categories and products that are missing",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer closeDB(db)

			catalog, err := config.LoadSeedCatalog()
			if err != nil {
				return err
			}
			if err := config.SeedCatalog(db, catalog); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog seeded: %d categories, %d products\n",
				len(catalog.Categories), len(catalog.Products))
			return nil
		},
	}
}

func NewResetCommand(opts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop every table, recreate the schema and seed the catalog",
		Long: `Drop every table, recreate the schema and seed the catalog.

All users and orders are lost. Pass --yes to confirm.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			_, db, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := config.ResetAndMigrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func NewCleanCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "clean",
		Short:         "Delete all orders and non-admin accounts, keeping the catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := config.CleanDatabase(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Orders and customer accounts removed")
			return nil
		},
	}
}

type promoteOptions struct {
	Name     string
	Password string
}

func NewPromoteCommand(opts *RootOptions) *cobra.Command {
	p := &promoteOptions{}

	cmd := &cobra.Command{
		Use:   "promote <email>",
		Short: "Grant the admin role to an account",
		Long: `Grant the admin role to an account.

When no account uses the email, one is created with --name and --password.

Example:
  catstore promote boss@example.com
  catstore promote ops@example.com --name Ops --password changeme`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer closeDB(db)

			user, err := config.PromoteAdmin(db, args[0], p.Name, p.Password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin (id %d)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Name, "name", "", "name for a new account")
	cmd.Flags().StringVar(&p.Password, "password", "", "password for a new account")
	return cmd
}
