package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/embedd/embedd/engine/infra/server"
	"github.com/embedd/embedd/pkg/config"
	"github.com/embedd/embedd/pkg/logger"
)

// ServeCmd starts the embedding HTTP service: the model is loaded first and
// the listener opens only once it is resident.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the embedding HTTP service",
		RunE:  runServe,
	}
	cmd.Flags().String("host", "", "bind address (overrides EMBEDD_SERVER_HOST)")
	cmd.Flags().Int("port", 0, "bind port (overrides EMBEDD_SERVER_PORT)")
	cmd.Flags().String("model", "", "embedding model identifier (overrides EMBEDD_EMBEDDER_MODEL)")
	cmd.Flags().String("models-dir", "", "local model weights directory (overrides EMBEDD_EMBEDDER_MODELS_DIR)")
	cmd.Flags().String("env-file", "", "load environment variables from this file")
	cmd.Flags().String("log-level", "", "log level: debug, info, warn, error")
	cmd.Flags().Bool("log-json", false, "emit logs as JSON")
	cmd.Flags().Bool("log-source", false, "include caller information in logs")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		// Best effort: a .env in the working directory is optional.
		_ = godotenv.Load()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logLevel, logJSON, logSource, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return err
	}
	if logLevel == "" {
		logLevel = cfg.Runtime.LogLevel
	}
	logger.SetupLogger(logLevel, logJSON || cfg.Runtime.LogJSON, logSource)

	ctx = config.ContextWithConfig(ctx, cfg)
	srv, err := server.NewServer(ctx)
	if err != nil {
		return err
	}
	return srv.Run()
}

// applyFlagOverrides lets explicit CLI flags win over defaults and
// environment variables.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("host") {
		host, err := cmd.Flags().GetString("host")
		if err != nil {
			return err
		}
		cfg.Server.Host = host
	}
	if cmd.Flags().Changed("port") {
		port, err := cmd.Flags().GetInt("port")
		if err != nil {
			return err
		}
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("model") {
		model, err := cmd.Flags().GetString("model")
		if err != nil {
			return err
		}
		cfg.Embedder.Model = model
	}
	if cmd.Flags().Changed("models-dir") {
		dir, err := cmd.Flags().GetString("models-dir")
		if err != nil {
			return err
		}
		cfg.Embedder.ModelsDir = dir
	}
	if cmd.Flags().Changed("log-level") {
		level, err := cmd.Flags().GetString("log-level")
		if err != nil {
			return err
		}
		cfg.Runtime.LogLevel = level
	}
	return nil
}
