// cmd/seeder/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unclebandit/aisdr-backend/internal/config"
	"github.com/unclebandit/aisdr-backend/internal/db"
	"github.com/unclebandit/aisdr-backend/internal/id"
	"github.com/unclebandit/aisdr-backend/internal/logger"
	"github.com/unclebandit/aisdr-backend/internal/repository"
	"github.com/unclebandit/aisdr-backend/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "seeder",
		Short:        "Database setup and prospect seeding",
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newImportCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the campaigns table in Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			conn, err := db.OpenPostgres(cmd.Context(), cfg.DB.DSN(), log)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.Migrate(cmd.Context(), conn); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database migration completed successfully!")
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	var (
		file string
		name string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Store a CSV or XLSX prospect file as a new campaign",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			repo, closeStore, err := repository.OpenCampaignRepository(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := importFile(cmd.Context(), &service.ImportService{CampaignRepo: repo, Logger: log}, file, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded campaign %s: %d people, %d companies\n",
				res.Campaign.ID, len(res.CampaignPeople), len(res.CampaignContacts))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to a .csv or .xlsx file")
	cmd.Flags().StringVarP(&name, "name", "n", "", "campaign name (defaults to the file name)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func importFile(ctx context.Context, svc *service.ImportService, path, name string) (*service.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()

	return svc.Import(ctx, filepath.Base(path), f, service.ImportOptions{Save: true, Name: name})
}

func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return cfg, nil, err
	}
	if err := id.Init(cfg.NodeID); err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}
