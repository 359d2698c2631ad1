package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tracked jobs and resumes as JSON",
	Long:  `Write every job, optimized resume and base resume in the local store to a JSON backup.`,
	RunE:  runExport,
}

var importDataCmd = &cobra.Command{
	Use:   "import-data <backup.json>",
	Short: "Restore jobs and resumes from a JSON backup",
	Long:  `Replace the jobs and resumes in the local store with the contents of a backup written by export.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runImportData,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write the backup to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importDataCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	data, err := store.Export(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), exportOut, append(data, '\n'))
}

func runImportData(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	summary, err := store.Import(cmd.Context(), data, userID)
	if err != nil {
		return fmt.Errorf("failed to import: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d jobs, %d optimized resumes and %d base resumes\n",
		summary.Jobs, summary.Resumes, summary.BaseResumes)
	return err
}
