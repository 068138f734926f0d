package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Veraticus/finchat/internal/cli"
	"github.com/Veraticus/finchat/internal/common"
	"github.com/Veraticus/finchat/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errSilent marks failures whose message was already printed.
var errSilent = errors.New("command failed")

var (
	cfgFile string
	version = "dev"
	rootCmd = newRootCmd()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finchat",
		Short: "💬 Asistente tributario en tu terminal",
		Long: `finchat: chat with your tax assistant, upload receipts for OCR and SUNAT
validation, and query what you have already declared.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/finchat/config.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	cmd.PersistentFlags().String("api-url", "", "backend base URL (default: "+config.DefaultBaseURL+")")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("api.base_url", cmd.PersistentFlags().Lookup("api-url"))

	cmd.AddCommand(registerCmd())
	cmd.AddCommand(loginCmd())
	cmd.AddCommand(logoutCmd())
	cmd.AddCommand(statusCmd())
	cmd.AddCommand(askCmd())
	cmd.AddCommand(consultCmd())
	cmd.AddCommand(uploadCmd())
	cmd.AddCommand(chatCmd())
	cmd.AddCommand(healthCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel() // Always cleanup

	if err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintln(os.Stderr, cli.FormatError(errorText(err)))
		}
		os.Exit(1)
	}
}

// errorText prefers the user-facing message of our error types.
func errorText(err error) string {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		viper.AddConfigPath(fmt.Sprintf("%s/.config/finchat", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("FINCHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	config.SetDefaults(viper.GetViper())

	if err := common.SetupLogger(viper.GetString("logging.level"), viper.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "finchat %s\n", version)
		},
	}
}
