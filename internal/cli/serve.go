package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/warnctx/internal/api"
	"github.com/sprite-ai/warnctx/internal/dataset"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing the warnctx resolver.

Endpoints:
  GET  /health       Health check
  POST /api/parse    Parse a diff into files and patches
  POST /api/context  Extract a context from supplied source and patch
  POST /api/resolve  Resolve one warning against a repository
  GET  /api/ws       WebSocket for streaming resolve requests
  GET  /metrics      Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "", "address to listen on (default from config)")
	serveCmd.Flags().IntP("port", "p", 0, "port to listen on (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Serve.Addr
	}
	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = cfg.Serve.Port
	}

	listen := fmt.Sprintf("%s:%d", addr, port)
	srv := api.New(listen, dataset.PoolOpener(newPool()), logger)
	return srv.ListenAndServe(cmd.Context())
}
