package main

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/career-portal/internal/observability"
	"github.com/jonathan/career-portal/internal/resumetext"
	"github.com/spf13/cobra"
)

var (
	extractParse bool
	extractJSON  bool
	extractOut   string
)

var extractCmd = &cobra.Command{
	Use:   "extract <resume.pdf>",
	Short: "Extract text from a resume PDF",
	Long:  `Extract the plain text of a resume PDF, optionally splitting it into contact details and sections.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractParse, "parse", false, "Show contact details, skills, experience and education")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "Print the parsed resume as JSON")
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "Write the extracted text to this file")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	text, err := readResume(args[0])
	if err != nil {
		return err
	}

	switch {
	case extractJSON:
		parsed := resumetext.Parse(text)
		data, err := json.MarshalIndent(parsed, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode parsed resume: %w", err)
		}
		return writeOutput(cmd.OutOrStdout(), extractOut, append(data, '\n'))
	case extractParse:
		parsed := resumetext.Parse(text)
		observability.NewPrinter(cmd.OutOrStdout()).PrintParsedResume(&parsed)
		if extractOut != "" {
			return writeOutput(nil, extractOut, []byte(text))
		}
		return nil
	default:
		return writeOutput(cmd.OutOrStdout(), extractOut, []byte(text+"\n"))
	}
}
