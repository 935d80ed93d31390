package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/access"
	"github.com/abdout/souq/repository"
	"github.com/abdout/souq/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportTenant string
	exportOut    string
)

var exportInventoryCmd = &cobra.Command{
	Use:   "export-inventory",
	Short: "Write a tenant's inventory report as an XLSX file",
	Example: `  souq export-inventory --tenant fresh-mart
  souq export-inventory --tenant fresh-mart --out ./reports`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportTenant == "" {
			return fmt.Errorf("--tenant is required")
		}
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()
		defer closeDB(db)

		svc := services.NewReportService(repository.NewItemRepository(db), repository.NewTenantRepository(db), access.NewTenantPolicy(), log)
		// CLI ทำงานแทน operator จึงใช้สิทธิ์ superadmin
		rep, err := svc.InventoryReport(access.Actor{Role: entity.RoleSuperAdmin}, exportTenant)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(exportOut, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
		path := filepath.Join(exportOut, rep.Filename)
		if err := os.WriteFile(path, rep.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		log.Info("inventory report written", zap.String("path", path), zap.Int("bytes", len(rep.Data)))
		fmt.Println(path)
		return nil
	},
}

func init() {
	exportInventoryCmd.Flags().StringVar(&exportTenant, "tenant", "", "tenant slug")
	exportInventoryCmd.Flags().StringVar(&exportOut, "out", ".", "output directory")
	rootCmd.AddCommand(exportInventoryCmd)
}
