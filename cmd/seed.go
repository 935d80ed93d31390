package cmd

import (
	"fmt"

	"github.com/abdout/souq/configs"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the superadmin account and global categories",
	Long: `Seed creates the superadmin from admin.email / admin.password (skipped when
either is empty) and the global category tree for every business type.
Running it twice is safe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()
		defer closeDB(db)

		if err := configs.Migrate(db); err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}
		if err := configs.SeedAdmin(db, cfg.Admin, log); err != nil {
			return fmt.Errorf("seed admin failed: %w", err)
		}
		if err := configs.SeedCategories(db, log); err != nil {
			return fmt.Errorf("seed categories failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
