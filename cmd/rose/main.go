package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Veraticus/the-gilded-rose/internal/cli"
	"github.com/Veraticus/the-gilded-rose/internal/common"
	"github.com/Veraticus/the-gilded-rose/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	envFile string
	version = "dev"
	rootCmd = newRootCmd()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rose",
		Short: "🌹 Gilded Rose inventory keeper",
		Long: `rose keeps the Gilded Rose inventory: it stores items, advances them
one day at a time according to their category, and prints the daily report.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/rose/config.yaml)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file loaded before configuration")
	cmd.PersistentFlags().String("db", "", "database path (default: $HOME/.local/share/rose/rose.db)")
	cmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "log format (console, json)")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	// Bind flags to viper
	_ = viper.BindPFlag(config.KeyDatabasePath, cmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag(config.KeyLogLevel, cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, cmd.PersistentFlags().Lookup("log-format"))

	cmd.AddCommand(reportCmd())
	cmd.AddCommand(itemsCmd())
	cmd.AddCommand(advanceCmd())
	cmd.AddCommand(runsCmd())
	cmd.AddCommand(checkpointCmd())
	cmd.AddCommand(classifyCmd())
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
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	if envFile != "" {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		viper.AddConfigPath(fmt.Sprintf("%s/.config/rose", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	config.SetDefaults(viper.GetViper())

	// Environment variables
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(config.EnvKeyReplacer())
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor || !settings.Color {
		cli.DisableColor()
	}

	return common.SetupLogger(os.Stderr, settings.LogLevel, settings.LogFormat)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rose %s\n", version)
		},
	}
}
