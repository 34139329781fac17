package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docgen/config"
	"docgen/internal/adapter/extractor"
	"docgen/internal/adapter/llm"
	"docgen/internal/adapter/prompt"
	"docgen/internal/port"
	"docgen/internal/usecase"
)

var (
	cfgFile      string
	cfg          *config.Config
	providerFlag string
	modelFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "docgen",
	Short: "AI-powered docstring generator for Python source",
	Long: `docgen parses Python files, extracts function and class definitions,
generates docstrings via an LLM provider (DeepSeek, OpenAI, or an offline
mock), and splices them back into the source at the right indentation.

Example usage:
  docgen run sample.py                  # Print documented source to stdout
  docgen run sample.py -o documented.py # Write to a file
  docgen batch ./src --recursive        # Document a whole tree
  docgen web                            # Serve the HTTP API`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; missing files are fine.
		_ = godotenv.Load()

		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, werr := os.Getwd()
			if werr != nil {
				return fmt.Errorf("failed to get working directory: %w", werr)
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if providerFlag != "" {
			cfg.Provider.Name = providerFlag
		}
		if modelFlag != "" {
			cfg.Provider.Model = modelFlag
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./docgen.yaml)")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "LLM provider: auto, mock, deepseek, openai")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "model name override")
}

// buildPipeline wires the extractor, prompt builder and provider into a use
// case. Template and provider problems surface here, before any file is
// touched. The caller owns closing the cache.
func buildPipeline(c port.Cache, quiet bool) (*usecase.DocumentUseCase, error) {
	prompts, err := prompt.NewBuilder(cfg.Templates.Function, cfg.Templates.Class)
	if err != nil {
		return nil, err
	}

	generator, note, err := llm.Resolve(llm.Options{
		Provider:    cfg.Provider.Name,
		Model:       cfg.Provider.Model,
		APIKeyEnv:   cfg.Provider.APIKeyEnv,
		BaseURL:     cfg.Provider.BaseURL,
		Timeout:     cfg.Provider.Timeout(),
		MaxRetries:  cfg.Provider.MaxRetries,
		Backoff:     cfg.Provider.Backoff(),
		BackoffCap:  cfg.Provider.BackoffLimit(),
		Temperature: cfg.Provider.Temperature,
		MaxTokens:   cfg.Provider.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	if !quiet && note != "" {
		fmt.Fprintf(os.Stderr, "docgen: %s\n", note)
	}

	return usecase.NewDocumentUseCase(extractor.NewPythonExtractor(), prompts, generator, c), nil
}
