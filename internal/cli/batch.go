package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docgen/internal/adapter/fs"
	"docgen/internal/usecase"
)

var (
	batchRecursive bool
	batchVerbose   bool
	batchWrite     bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [directory]",
	Short: "Generate docstrings for every Python file in a directory",
	Long: `Walk a directory collecting .py files and run the documentation
pipeline over each. A file is either fully rewritten or left untouched;
per-file failures are reported and do not abort the batch.

Examples:
  docgen batch ./src
  docgen batch ./src --recursive --write --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().BoolVarP(&batchRecursive, "recursive", "r", false, "process subdirectories recursively")
	batchCmd.Flags().BoolVarP(&batchVerbose, "verbose", "v", false, "print per-file detail")
	batchCmd.Flags().BoolVarP(&batchWrite, "write", "w", false, "rewrite files in place (default: report only)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("directory does not exist: %s", dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	walker := fs.NewWalker(cfg.Batch.Includes, cfg.Batch.Excludes, batchRecursive)
	files, err := walker.Walk(dir)
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	if len(files) == 0 {
		fmt.Printf("No Python files found in %s\n", dir)
		return nil
	}

	c := openCache(dir)
	if c != nil {
		defer c.Close()
	}

	uc, err := buildPipeline(c, false)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if !batchVerbose {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("[cyan]Documenting[reset]"),
			progressbar.OptionOnCompletion(func() {
				fmt.Println()
			}),
		)
	}

	var generated, skippedEntities, failedFiles, writtenFiles int
	for _, path := range files {
		if batchVerbose {
			rel, _ := filepath.Rel(dir, path)
			fmt.Printf("Processing %s\n", rel)
		}

		source, err := fs.ReadFile(path)
		if err != nil {
			failedFiles++
			fmt.Fprintf(os.Stderr, "  ! %s: %v\n", path, err)
			continue
		}

		opts := usecase.Options{}
		if batchVerbose {
			opts.OnEntity = reportEntity
		}

		res, err := uc.Document(cmd.Context(), path, source, opts)
		if err != nil {
			if usecase.IsParseError(err) {
				failedFiles++
				fmt.Fprintf(os.Stderr, "  ! %v\n", err)
				if bar != nil {
					bar.Add(1)
				}
				continue
			}
			return err
		}

		generated += res.Generated
		skippedEntities += res.Skipped

		if batchWrite && res.Generated > 0 && res.NewSource != source {
			if err := os.WriteFile(path, []byte(res.NewSource), 0644); err != nil {
				failedFiles++
				fmt.Fprintf(os.Stderr, "  ! %s: %v\n", path, err)
			} else {
				writtenFiles++
			}
		}

		if bar != nil {
			bar.Add(1)
		}
	}

	fmt.Printf("\nBatch complete:\n")
	fmt.Printf("  Files processed: %d\n", len(files))
	fmt.Printf("  Docstrings:      %d\n", generated)
	if writtenFiles > 0 {
		fmt.Printf("  Files rewritten: %d\n", writtenFiles)
	}
	if skippedEntities > 0 {
		fmt.Printf("  Entities skipped: %d\n", skippedEntities)
	}
	if failedFiles > 0 {
		fmt.Printf("  Files failed:    %d\n", failedFiles)
	}
	if !batchWrite {
		fmt.Println("\nDry run: pass --write to rewrite files in place.")
	}
	return nil
}
