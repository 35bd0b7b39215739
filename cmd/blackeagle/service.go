package main

import (
	"github.com/blackeagle-id/blackeagle/internal/config"
	"github.com/blackeagle-id/blackeagle/internal/dnscheck"
	"github.com/blackeagle-id/blackeagle/internal/investigate"
	"github.com/blackeagle-id/blackeagle/internal/probe"
	"github.com/blackeagle-id/blackeagle/internal/reputation"
	"github.com/blackeagle-id/blackeagle/internal/scanner"
	"github.com/blackeagle-id/blackeagle/internal/validate"
)

// buildService constructs the investigation coordinator and all of its
// collaborators from configuration. A missing scanner executable aborts
// here rather than degrading silently later.
func buildService(cfg *config.Config) (*investigate.Service, error) {
	bridge, err := scanner.New(scanner.Options{
		Interpreter: cfg.ScannerInterpreter,
		Script:      cfg.ScannerScript,
		Dir:         cfg.ScannerDir,
		ResultsDir:  cfg.ScannerResultsDir,
		Timeout:     cfg.ScannerTimeout,
	})
	if err != nil {
		return nil, err
	}

	prober := probe.New(probe.Options{
		Timeout:       cfg.ProbeTimeout,
		UserAgent:     cfg.UserAgent,
		WhatsAppHost:  cfg.WhatsAppHost,
		TelegramHost:  cfg.TelegramHost,
		RatePerSecond: cfg.ProbeRatePerSecond,
		Burst:         cfg.ProbeBurst,
	})

	return investigate.New(investigate.Dependencies{
		DNS:            dnscheck.New(cfg.DNSTimeout),
		Scanner:        bridge,
		Prober:         prober,
		Reputation:     reputation.NewLookup(),
		Phones:         validate.NewPhoneValidator(cfg.DefaultCountryCode, cfg.TrunkPrefix),
		OverallTimeout: cfg.OverallTimeout,
	})
}
