package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"portfolio/internal/application/orchestrators"
)

var (
	seedFile      string
	seedOverwrite bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load portfolio content from a YAML or JSON file",
	Long: `Loads the profile, about section, projects, skills and experience from a
content file. Lists are only seeded into empty collections, so running seed
twice does not duplicate entries. --overwrite replaces the profile and about
records.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "content file (YAML or JSON)")
	seedCmd.Flags().BoolVar(&seedOverwrite, "overwrite", false, "replace existing profile and about records")
	seedCmd.MarkFlagRequired("file")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(seedFile)
	if err != nil {
		return err
	}
	doc, err := orchestrators.ParseContent(data)
	if err != nil {
		return fmt.Errorf("%s: %w", seedFile, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	backend, closeStore, err := openStore(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := orchestrators.ExecuteSeedContent(cmd.Context(), doc, seedOverwrite, orchestrators.SeedContentDeps{Store: backend.Store})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "singletons written: %d, records created: %d, collections skipped: %d\n",
		res.Singletons, res.Created, len(res.Skipped))
	return nil
}
