package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/SAP-F-2025/story-survey-service/internal/config"
	"github.com/SAP-F-2025/story-survey-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/story-survey-service/internal/services"
	"github.com/SAP-F-2025/story-survey-service/internal/utils"
	"github.com/SAP-F-2025/story-survey-service/pkg"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	exportStudy string
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write archived submissions to an xlsx workbook",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportStudy, "study", "", "Only export this study id")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: submissions_<date>.xlsx)")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	logger := utils.ToSlogLogger(utils.NewLogger(cfg.Environment))
	export := services.NewExportService(postgres.NewSubmissionPostgreSQL(db), logger)

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()
	data, err := export.ExportStudy(ctx, exportStudy)
	if err != nil {
		return err
	}

	if exportOut == "" {
		exportOut = fmt.Sprintf("submissions_%s.xlsx", time.Now().UTC().Format("20060102"))
	}
	if err := os.WriteFile(exportOut, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", exportOut, len(data))
	return nil
}

func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return config.LoadConfig()
}
