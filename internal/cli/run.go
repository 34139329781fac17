package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"docgen/config"
	"docgen/internal/adapter/cache"
	"docgen/internal/adapter/fs"
	"docgen/internal/domain"
	"docgen/internal/port"
	"docgen/internal/usecase"
)

var (
	runOutput        string
	runVerbose       bool
	runFunctionsOnly bool
	runClassesOnly   bool
	runDryRun        bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Generate docstrings for one Python file",
	Long: `Parse a Python file, generate a docstring for every top-level function
and class, and print the documented source to stdout (or write it with -o).

Examples:
  docgen run sample.py
  docgen run sample.py --output documented_sample.py
  docgen run sample.py --functions-only --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "output file (default: stdout)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "print per-entity status")
	runCmd.Flags().BoolVar(&runFunctionsOnly, "functions-only", false, "process only functions, skip classes")
	runCmd.Flags().BoolVar(&runClassesOnly, "classes-only", false, "process only classes, skip functions")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "generate but do not write anything")
}

func runRun(cmd *cobra.Command, args []string) error {
	path := args[0]
	if err := validatePythonFile(path); err != nil {
		return err
	}

	source, err := fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if runVerbose {
		fmt.Fprintf(os.Stderr, "Processing %s (%d bytes)\n", path, len(source))
	}

	c := openCache(filepath.Dir(path))
	if c != nil {
		defer c.Close()
	}

	uc, err := buildPipeline(c, false)
	if err != nil {
		return err
	}

	opts := usecase.Options{
		FunctionsOnly: runFunctionsOnly,
		ClassesOnly:   runClassesOnly,
	}
	if runVerbose {
		opts.OnEntity = reportEntity
	}

	res, err := uc.Document(cmd.Context(), path, source, opts)
	if err != nil {
		return err
	}

	if len(res.Results) == 0 {
		fmt.Fprintln(os.Stderr, "No functions or classes found to document.")
		return nil
	}

	printSummary(res)

	if runDryRun {
		return nil
	}

	if runOutput != "" {
		if err := os.WriteFile(runOutput, []byte(res.NewSource), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", runOutput, err)
		}
		fmt.Fprintf(os.Stderr, "Documented source written to %s\n", runOutput)
		return nil
	}

	fmt.Print(res.NewSource)
	if !strings.HasSuffix(res.NewSource, "\n") {
		fmt.Println()
	}
	return nil
}

func validatePythonFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, use 'docgen batch'", path)
	}
	if !strings.HasSuffix(path, ".py") {
		return fmt.Errorf("not a Python file: %s", path)
	}
	return nil
}

// openCache returns the persistent cache, or nil when disabled or
// unavailable. A broken cache never blocks generation.
func openCache(dir string) port.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	if err := config.EnsureDocgenDir(dir); err != nil {
		return nil
	}
	c, err := cache.NewBoltCache(config.CacheDBPath(dir))
	if err != nil {
		return nil
	}
	return c
}

func reportEntity(r domain.DocstringResult) {
	switch {
	case r.Skipped():
		fmt.Fprintf(os.Stderr, "  skipped %s: %s\n", r.Entity.ID(), r.Err)
	case r.Cached:
		fmt.Fprintf(os.Stderr, "  cached  %s\n", r.Entity.ID())
	default:
		fmt.Fprintf(os.Stderr, "  done    %s\n", r.Entity.ID())
	}
}

func printSummary(res *usecase.Result) {
	fmt.Fprintf(os.Stderr, "Generated %d docstrings", res.Generated)
	if res.Cached > 0 {
		fmt.Fprintf(os.Stderr, " (%d from cache)", res.Cached)
	}
	if res.Skipped > 0 {
		fmt.Fprintf(os.Stderr, ", skipped %d", res.Skipped)
	}
	fmt.Fprintln(os.Stderr)

	for _, r := range res.Results {
		if r.Skipped() {
			fmt.Fprintf(os.Stderr, "  ! %s: %s\n", r.Entity.ID(), r.Err)
		}
	}
}
