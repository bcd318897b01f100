// Package main provides the SalesDesk CLI entry point.
// SalesDesk is a sales assistant that answers customer questions about one vehicle
// from a CSV dataset, in the terminal or in the browser.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"salesdesk/internal/config"
	"salesdesk/internal/logger"
	"salesdesk/internal/orchestration"
	"salesdesk/internal/server"
	"salesdesk/internal/services"
	"salesdesk/internal/shell"
	"salesdesk/internal/version"
	"salesdesk/pkg/salestypes"
)

func main() {
	if err := newRootCmd(viper.GetViper()).Execute(); err != nil {
		shell.RenderStartupError(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree with every persistent flag bound into v.
func newRootCmd(v *viper.Viper) *cobra.Command {
	var logLevel, logFile string

	rootCmd := &cobra.Command{
		Use:   "salesdesk",
		Short: "SalesDesk - IONIQ 5 sales assistant",
		Long: `SalesDesk answers customer questions about the Hyundai IONIQ 5 using a CSV
dataset and a hosted language model. Without a subcommand it starts the terminal chat.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := logger.Configure(logLevel, logFile); err != nil {
				return fmt.Errorf("error configuring logger: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, v)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	flags.StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	flags.String("config", "", "Config file (default: salesdesk.yaml in the working directory)")
	flags.String("model", "", "Model identifier [env: GENAI_MODEL]")
	flags.String("data-file", "", "CSV dataset path [env: DATA_FILE_PATH] (default: ioniq.csv)")
	flags.String("provider", "", "Inference provider (gemini|openai|anthropic)")

	for key, flag := range map[string]string{
		config.KeyConfigFile:   "config",
		config.KeyModel:        "model",
		config.KeyDataFilePath: "data-file",
		config.KeyProvider:     "provider",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", flag, err))
		}
	}

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Start the terminal chat",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, v)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web chat",
		Long:  `Serve the browser chat page, the JSON API, /health and /metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, v)
		},
	}
	serveCmd.Flags().String("addr", "", "Listen address [env: SALESDESK_LISTEN_ADDR] (default: :8501)")
	if err := v.BindPFlag(config.KeyListenAddr, serveCmd.Flags().Lookup("addr")); err != nil {
		panic(fmt.Sprintf("binding flag addr: %v", err))
	}

	var detailed bool
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			if detailed {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetDetailedVersion())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.GetFormattedVersion())
		},
	}
	versionCmd.Flags().BoolVar(&detailed, "detailed", false, "Show build details")

	rootCmd.AddCommand(chatCmd, serveCmd, versionCmd)
	return rootCmd
}

// newClientFactory returns the provider factory, capturing HTTP exchanges at debug level.
func newClientFactory() *services.ClientFactoryService {
	factory := services.NewClientFactoryService()
	if logger.Logger.GetLevel() == log.DebugLevel {
		factory.SetTransport(services.NewDebugTransportService().CreateTransport(nil))
	}
	return factory
}

// bootstrapAssistant loads the configuration and prepares the shared assistant.
func bootstrapAssistant(v *viper.Viper, factory salestypes.ClientFactory) (*orchestration.Assistant, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	return orchestration.Bootstrap(cfg, factory)
}

func runChat(cmd *cobra.Command, v *viper.Viper) error {
	logger.Info("Starting SalesDesk chat", "version", version.GetVersion())

	assistant, err := bootstrapAssistant(v, newClientFactory())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var renderer shell.Renderer
	markdown := services.NewMarkdownService()
	if err := markdown.Initialize(); err != nil {
		logger.Warn("Markdown rendering disabled", "error", err)
	} else {
		renderer = markdown
	}

	line := shell.NewLiner()
	defer func() { _ = line.Close() }()

	return shell.New(assistant.NewConversation(), line, renderer, cmd.OutOrStdout()).Run(ctx)
}

func runServe(cmd *cobra.Command, v *viper.Viper) error {
	logger.Info("Starting SalesDesk server", "version", version.GetVersion())

	assistant, err := bootstrapAssistant(v, newClientFactory())
	if err != nil {
		return err
	}

	cfg := assistant.Config()
	srv, err := server.New(assistant, server.Options{
		Addr:           cfg.ListenAddr,
		SessionTTL:     cfg.SessionTTL,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

