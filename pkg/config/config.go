// Package config provides configuration handling for the free domain finder
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mallocator/free-domains/pkg/logger"
	"github.com/mallocator/free-domains/pkg/registry"
)

// ErrInvalid marks a configuration value that cannot be used
var ErrInvalid = errors.New("invalid configuration")

// Transport names accepted by the Transport setting
const (
	TransportClient  = "client"
	TransportCommand = "command"
)

// Config holds application settings
type Config struct {
	// Input file with one candidate phrase per line
	InputFile string `json:"input_file"`

	// Output file for free domains; derived from InputFile and Suffix when empty
	OutputFile string `json:"output_file"`

	// Top-level domain to check
	TLD string `json:"tld"`

	// Suffix inserted before the input extension to build the output path
	Suffix string `json:"suffix"`

	// Inclusive label length bounds
	MinLength int `json:"min_length"`
	MaxLength int `json:"max_length"`

	// Number of leading input lines to skip
	Skip int `json:"skip"`

	// Continue from the saved checkpoint
	Resume bool `json:"resume"`

	// Debug logging, including raw WHOIS responses
	Debug bool `json:"debug"`

	// Persistent log file; empty disables it
	LogFile string `json:"log_file"`

	// Checkpoint file; derived from OutputFile when empty
	StateFile string `json:"state_file"`

	// Query pacing and retry policy
	Backoff           time.Duration `json:"backoff"` // delay before the first attempt
	GiveUp            time.Duration `json:"give_up"` // stop once the next delay reaches this
	MinResponseLength int           `json:"min_response_length"`
	Timeout           time.Duration `json:"timeout"` // per call timeout

	// WHOIS transport
	Transport    string `json:"transport"`
	WhoisCommand string `json:"whois_command"`
	WhoisServer  string `json:"whois_server"`

	// DNS pre-check
	DNSPrecheck bool   `json:"dns_precheck"`
	Nameserver  string `json:"nameserver"`

	// Prometheus endpoint, e.g. ":2112"
	MetricsAddr string `json:"metrics_addr"`

	// SMTP configuration for the run summary
	SMTPHost  string `json:"smtp_host"`
	SMTPPort  int    `json:"smtp_port"`
	SMTPUser  string `json:"smtp_user"`
	SMTPPass  string `json:"smtp_pass"`
	EmailFrom string `json:"email_from"`
	EmailTo   string `json:"email_to"`

	// Logger instance
	Log *logger.Logger `json:"-"`
}

// New creates a new configuration with default values
func New(log *logger.Logger) *Config {
	return &Config{
		TLD:               "cz",
		Suffix:            "-freedomains",
		MinLength:         1,
		MaxLength:         18,
		LogFile:           "check-whois.log",
		Backoff:           time.Second,
		GiveUp:            4 * time.Second,
		MinResponseLength: 50,
		Timeout:           30 * time.Second,
		Transport:         TransportClient,
		WhoisCommand:      "whois",
		SMTPPort:          25,
		Log:               log,
	}
}

// LoadFromFile loads configuration from a JSON file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}

	return nil
}

// LoadFromEnv overrides configuration with environment variables
func (c *Config) LoadFromEnv() {
	setString(&c.TLD, "TLD")
	setString(&c.Suffix, "SUFFIX")
	setInt(&c.MinLength, "MIN_LENGTH")
	setInt(&c.MaxLength, "MAX_LENGTH")
	setString(&c.LogFile, "LOG_FILE")
	setString(&c.StateFile, "STATE_FILE")
	setDuration(&c.Backoff, "BACKOFF")
	setDuration(&c.GiveUp, "GIVE_UP")
	setInt(&c.MinResponseLength, "MIN_RESPONSE_LENGTH")
	setDuration(&c.Timeout, "TIMEOUT")
	setString(&c.Transport, "TRANSPORT")
	setString(&c.WhoisCommand, "WHOIS_COMMAND")
	setString(&c.WhoisServer, "WHOIS_SERVER")
	setBool(&c.DNSPrecheck, "DNS_PRECHECK")
	setString(&c.Nameserver, "NAMESERVER")
	setString(&c.MetricsAddr, "METRICS_ADDR")
	setString(&c.SMTPHost, "SMTP_HOST")
	setInt(&c.SMTPPort, "SMTP_PORT")
	setString(&c.SMTPUser, "SMTP_USER")
	setString(&c.SMTPPass, "SMTP_PASS")
	setString(&c.EmailFrom, "EMAIL_FROM")
	setString(&c.EmailTo, "EMAIL_TO")
}

// Validate checks the settings before any file is opened
func (c *Config) Validate() error {
	if _, err := registry.Lookup(c.TLD); err != nil {
		return err
	}
	if c.InputFile == "" {
		return fmt.Errorf("%w: input file is required", ErrInvalid)
	}
	if c.MinLength < 1 {
		return fmt.Errorf("%w: min length must be >= 1, got %d", ErrInvalid, c.MinLength)
	}
	if c.MaxLength < c.MinLength {
		return fmt.Errorf("%w: max length %d is below min length %d", ErrInvalid, c.MaxLength, c.MinLength)
	}
	if c.Skip < 0 {
		return fmt.Errorf("%w: skip must be >= 0, got %d", ErrInvalid, c.Skip)
	}
	if c.Backoff <= 0 {
		return fmt.Errorf("%w: backoff must be > 0, got %s", ErrInvalid, c.Backoff)
	}
	if c.GiveUp <= 0 {
		return fmt.Errorf("%w: give-up threshold must be > 0, got %s", ErrInvalid, c.GiveUp)
	}
	if c.MinResponseLength < 0 {
		return fmt.Errorf("%w: min response length must be >= 0, got %d", ErrInvalid, c.MinResponseLength)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be > 0, got %s", ErrInvalid, c.Timeout)
	}
	switch c.Transport {
	case TransportClient:
	case TransportCommand:
		if c.WhoisCommand == "" {
			return fmt.Errorf("%w: whois command is required for the command transport", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalid, c.Transport)
	}
	return nil
}

// Output returns the output path, deriving it from the input path when unset
func (c *Config) Output() string {
	if c.OutputFile != "" {
		return c.OutputFile
	}
	return AddSuffix(c.InputFile, c.Suffix)
}

// State returns the checkpoint path, deriving it from the output path when unset
func (c *Config) State() string {
	if c.StateFile != "" {
		return c.StateFile
	}
	return c.Output() + ".state.json"
}

// AddSuffix inserts suffix before the extension: "file.txt" becomes "file-suffix.txt".
// Leading dots of the file name are not an extension, so ".names" becomes
// ".names-suffix".
func AddSuffix(path, suffix string) string {
	ext := filepath.Ext(strings.TrimLeft(filepath.Base(path), "."))
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// setString sets a string field from env
func setString(field *string, env string) {
	if v := os.Getenv(env); v != "" {
		*field = strings.TrimSpace(v)
	}
}

// setInt sets an int field from env
func setInt(field *int, env string) {
	if v := os.Getenv(env); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*field = i
		}
	}
}

// setBool sets a bool field from env
func setBool(field *bool, env string) {
	if v := os.Getenv(env); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*field = b
		}
	}
}

// setDuration sets a time.Duration field from env
func setDuration(field *time.Duration, env string) {
	if v := os.Getenv(env); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*field = d
		}
	}
}
