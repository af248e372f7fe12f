package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/fnd/internal/api"
	"github.com/ppiankov/fnd/internal/pipeline"
	"github.com/ppiankov/fnd/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveAddr      string
	serveAPIKey    string
	serveLogFormat string
	serveLogLevel  string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis HTTP API",
	Long: `Serve exposes the scorer over HTTP:

  GET  /api/v1/health
  POST /api/v1/analyze                     {"url": "..."} or {"text": "..."}
  POST /api/v1/report?format=text|markdown|html
  GET  /metrics                            Prometheus metrics

Requests are rate limited per client address. When an API key is set
(--api-key or FND_SERVER_API_KEY), every endpoint except health requires
it in X-API-Key or "Authorization: Bearer".

Example:
  fnd serve --addr :8080
  FND_SERVER_API_KEY=secret fnd serve --log-format text`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().StringVar(&serveAPIKey, "api-key", "", "require this API key")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", "", "log format: json or text")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "log level: debug, info, warn, error")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if err := requireProviderKey(cfg); err != nil {
		return err
	}

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveAPIKey != "" {
		cfg.Server.APIKey = serveAPIKey
	}
	if serveLogFormat != "" {
		cfg.Server.LogFormat = serveLogFormat
	}
	if serveLogLevel != "" {
		cfg.Server.LogLevel = serveLogLevel
	}

	logger := util.NewLogger(os.Stderr, cfg.Server.LogFormat, cfg.Server.LogLevel)

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	if cfg.Server.APIKey == "" {
		logger.Warn("no API key configured, API is open")
	}
	if cfg.LLM.Provider != "" {
		logger.Info("LLM summaries enabled", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(cfg, p, p.Renderer(), logger)
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
