package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/blackeagle-id/blackeagle/internal/config"
	"github.com/blackeagle-id/blackeagle/internal/logging"
	"github.com/blackeagle-id/blackeagle/internal/models"
)

// Version information (set at build time with -ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "blackeagle",
	Short:   "BlackEagle - identifier intelligence engine",
	Long:    `BlackEagle investigates an email address or phone number across structural validators, DNS, an external presence scanner, and messaging-platform probes, and merges the results into one report.`,
	Version: Version,
}

var investigateCmd = &cobra.Command{
	Use:   "investigate",
	Short: "Run an investigation against an identifier",
}

var emailCmd = &cobra.Command{
	Use:   "email <address>",
	Short: "Investigate an email address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInvestigation(models.EmailTarget(args[0]))
	},
}

var phoneCmd = &cobra.Command{
	Use:   "phone <number>",
	Short: "Investigate a phone number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInvestigation(models.PhoneTarget(args[0]))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("BlackEagle %s\n", Version)
		if BuildTime != "unknown" {
			fmt.Printf("Built: %s\n", BuildTime)
		}
		if GitCommit != "unknown" {
			fmt.Printf("Commit: %s\n", GitCommit)
		}
	},
}

func init() {
	investigateCmd.AddCommand(emailCmd)
	investigateCmd.AddCommand(phoneCmd)
	rootCmd.AddCommand(investigateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runInvestigation(target models.Target) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Format:    cfg.LogFormat,
		Level:     cfg.LogLevel,
		Component: "blackeagle",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		startMetricsServer(ctx, cfg.MetricsAddr)
	}

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}

	report := svc.Investigate(ctx, target)

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Unable to encode report")
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
