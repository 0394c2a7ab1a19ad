package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"portfolio/internal/application/orchestrators"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every collection as one JSON document",
	Long:  `Writes the same document the dashboard download offers, messages included.`,
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "-", `output file, "-" for stdout`)
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	backend, closeStore, err := openStore(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	doc, err := orchestrators.ExecuteExport(cmd.Context(), orchestrators.ExportDeps{Store: backend.Store})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	data, err := doc.ToJSON()
	if err != nil {
		return err
	}

	if exportOut == "-" {
		_, err = cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(exportOut, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	slog.Info("export_event", "event", "written", "file", exportOut, "records", doc.RecordCount())
	return nil
}
