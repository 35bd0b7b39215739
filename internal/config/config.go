package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Defaults for timeouts and the phone-normalization policy. The default
// country is Indonesia (+62) with "0" as the trunk prefix.
const (
	DefaultScannerTimeout = 300 * time.Second
	DefaultDNSTimeout     = 3 * time.Second
	DefaultProbeTimeout   = 3 * time.Second
	DefaultOverallTimeout = 300 * time.Second

	DefaultCountryCode = "62"
	DefaultTrunkPrefix = "0"

	DefaultWhatsAppHost = "wa.me"
	DefaultTelegramHost = "t.me"

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Config holds the runtime configuration for the investigation engine.
type Config struct {
	LogLevel  string
	LogFormat string

	// MetricsAddr enables the Prometheus listener when non-empty.
	MetricsAddr string

	// External scanner tool.
	ScannerInterpreter string // interpreter used to run the scanner script
	ScannerDir         string // installation root, also the working directory
	ScannerScript      string // entry-point script inside ScannerDir
	ScannerResultsDir  string // where the tool writes result artifacts
	ScannerTimeout     time.Duration

	// Per-branch and overall deadlines.
	DNSTimeout     time.Duration
	ProbeTimeout   time.Duration
	OverallTimeout time.Duration

	// Phone normalization policy.
	DefaultCountryCode string // country calling code digits, no "+"
	TrunkPrefix        string // national trunk prefix stripped during normalization

	// Messaging probe endpoints.
	WhatsAppHost string
	TelegramHost string
	UserAgent    string

	// Probe request rate limiting.
	ProbeRatePerSecond float64
	ProbeBurst         int
}

// Load reads configuration from the environment, preferring an optional
// .env file in the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded environment overrides from .env")
	}

	cfg := &Config{
		LogLevel:           envOr("LOG_LEVEL", "info"),
		LogFormat:          envOr("LOG_FORMAT", "auto"),
		MetricsAddr:        os.Getenv("METRICS_ADDR"),
		ScannerInterpreter: envOr("SCANNER_INTERPRETER", "python3"),
		ScannerDir:         envOr("SCANNER_DIR", "blackbird"),
		ScannerTimeout:     DefaultScannerTimeout,
		DNSTimeout:         DefaultDNSTimeout,
		ProbeTimeout:       DefaultProbeTimeout,
		OverallTimeout:     DefaultOverallTimeout,
		DefaultCountryCode: envOr("DEFAULT_COUNTRY_CODE", DefaultCountryCode),
		TrunkPrefix:        envOr("TRUNK_PREFIX", DefaultTrunkPrefix),
		WhatsAppHost:       envOr("WHATSAPP_HOST", DefaultWhatsAppHost),
		TelegramHost:       envOr("TELEGRAM_HOST", DefaultTelegramHost),
		UserAgent:          envOr("PROBE_USER_AGENT", DefaultUserAgent),
		ProbeRatePerSecond: 5,
		ProbeBurst:         5,
	}

	cfg.ScannerScript = envOr("SCANNER_SCRIPT", filepath.Join(cfg.ScannerDir, "blackbird.py"))
	cfg.ScannerResultsDir = envOr("SCANNER_RESULTS_DIR", filepath.Join(cfg.ScannerDir, "results"))

	var err error
	if cfg.ScannerTimeout, err = envDuration("SCANNER_TIMEOUT", cfg.ScannerTimeout); err != nil {
		return nil, err
	}
	if cfg.DNSTimeout, err = envDuration("DNS_TIMEOUT", cfg.DNSTimeout); err != nil {
		return nil, err
	}
	if cfg.ProbeTimeout, err = envDuration("PROBE_TIMEOUT", cfg.ProbeTimeout); err != nil {
		return nil, err
	}
	if cfg.OverallTimeout, err = envDuration("OVERALL_TIMEOUT", cfg.OverallTimeout); err != nil {
		return nil, err
	}
	if rate := os.Getenv("PROBE_RATE_PER_SECOND"); rate != "" {
		parsed, parseErr := strconv.ParseFloat(rate, 64)
		if parseErr != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid PROBE_RATE_PER_SECOND %q", rate)
		}
		cfg.ProbeRatePerSecond = parsed
	}
	if burst := os.Getenv("PROBE_BURST"); burst != "" {
		parsed, parseErr := strconv.Atoi(burst)
		if parseErr != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid PROBE_BURST %q", burst)
		}
		cfg.ProbeBurst = parsed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations no investigation could run under.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ScannerScript) == "" {
		return fmt.Errorf("scanner script path is empty")
	}
	if strings.TrimSpace(c.DefaultCountryCode) == "" {
		return fmt.Errorf("default country code is empty")
	}
	for _, r := range c.DefaultCountryCode {
		if r < '0' || r > '9' {
			return fmt.Errorf("default country code %q must be digits only", c.DefaultCountryCode)
		}
	}
	if c.ScannerTimeout <= 0 || c.DNSTimeout <= 0 || c.ProbeTimeout <= 0 || c.OverallTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.DNSTimeout > c.OverallTimeout {
		return fmt.Errorf("DNS timeout %s exceeds overall timeout %s", c.DNSTimeout, c.OverallTimeout)
	}
	return nil
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	// Accept both Go duration strings and bare seconds.
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return 0, fmt.Errorf("invalid %s %q", key, raw)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return parsed, nil
}
