package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docgen/internal/adapter/fs"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "List the entities and size metrics of a Python file",
	Long: `Parse a Python file and print its top-level functions and classes
with their signatures, spans and existing docstrings. No generation happens.

Examples:
  docgen analyze sample.py
  docgen analyze sample.py --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "emit JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	if err := validatePythonFile(path); err != nil {
		return err
	}

	source, err := fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	uc, err := buildPipeline(nil, true)
	if err != nil {
		return err
	}

	unit, metrics, err := uc.Analyze(cmd.Context(), path, source)
	if err != nil {
		return err
	}

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"entities":   unit.Entities,
			"complexity": metrics,
		})
	}

	fmt.Printf("%s: %d lines, %d functions, %d classes, %d imports\n\n",
		path, metrics.Lines, metrics.Functions, metrics.Classes, metrics.Imports)

	for _, e := range unit.Entities {
		doc := "no docstring"
		if e.Docstring != "" {
			doc = "documented"
		}
		fmt.Printf("  %-8s %-30s lines %d-%d (%s)\n", e.Kind, e.Signature(), e.StartLine, e.EndLine, doc)
	}
	return nil
}
