package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"docgen/internal/adapter/cache"
	"docgen/internal/adapter/extractor"
	"docgen/internal/adapter/llm"
	"docgen/internal/adapter/prompt"
	"docgen/internal/port"
	"docgen/internal/usecase"
	"docgen/internal/web"
)

var webAddr string

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the documentation pipeline over HTTP",
	Long: `Start an HTTP server exposing the pipeline as a JSON API:

  POST /api/analyze   {"code": ...}                 entity listing + metrics
  POST /api/generate  {"code": ..., "selected_items": [...]}  docstrings + rewritten source
  POST /api/download  {"code": ..., "results": [...]}         .py attachment
  GET  /api/examples                                canned snippets`,
	RunE: runWeb,
}

func init() {
	rootCmd.AddCommand(webCmd)
	webCmd.Flags().StringVar(&webAddr, "addr", "", "listen address (default from config)")
}

func runWeb(cmd *cobra.Command, args []string) error {
	addr := webAddr
	if addr == "" {
		addr = cfg.Web.Addr
	}

	// Web mode shares one in-process cache across requests.
	var c port.Cache
	if cfg.Cache.Enabled {
		c = cache.NewMemoryCache(cfg.Cache.MemorySize, cfg.Cache.TTL())
	}

	uc, err := buildPipeline(c, false)
	if err != nil {
		return err
	}

	// Requests may opt into mock mode; resolve that pipeline up front too.
	prompts, err := prompt.NewBuilder(cfg.Templates.Function, cfg.Templates.Class)
	if err != nil {
		return err
	}
	mockUC := usecase.NewDocumentUseCase(extractor.NewPythonExtractor(), prompts, llm.NewMockGenerator(), c)

	handler := web.NewHandler(uc, mockUC, uc.Provider(), cfg.Web.MaxBodyBytes)
	srv := web.NewServer(addr, web.NewMux(handler))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		fmt.Printf("\nReceived %s, shutting down...\n", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
