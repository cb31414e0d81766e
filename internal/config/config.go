package config

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/thesavant42/wayback-scraper/internal/models"
)

// Defaults for a scrape session
const (
	DefaultOutputDir = "snapshots"
	DefaultDelay     = 1.0 // seconds between downloads
)

// maxDelaySeconds is the longest delay a time.Duration can hold
const maxDelaySeconds = float64(math.MaxInt64) / float64(time.Second)

// Environment variables consulted after the optional .env file is loaded
const (
	EnvOutputDir   = "WAYBACK_OUTPUT_DIR"
	EnvDelay       = "WAYBACK_DELAY"
	EnvLimit       = "WAYBACK_LIMIT"
	EnvHistoryDB   = "WAYBACK_HISTORY_DB"
	EnvCDXEndpoint = "WAYBACK_CDX_ENDPOINT"
	EnvArchiveBase = "WAYBACK_ARCHIVE_BASE"
)

// Config holds everything needed to run a scrape except the target URL
// Values are layered: defaults, then the TOML file, then the environment,
// then an explicit env file, then command-line flags
type Config struct {
	OutputDir    string  `toml:"output_dir"`
	Delay        float64 `toml:"delay"`         // seconds
	Limit        int     `toml:"limit"`         // 0 means unbounded
	SaveMetadata bool    `toml:"save_metadata"` // write metadata.json before downloading
	HistoryDB    string  `toml:"history_db"`    // empty disables the run journal
	CDXEndpoint  string  `toml:"cdx_endpoint,omitempty"`
	ArchiveBase  string  `toml:"archive_base,omitempty"`
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		OutputDir:    DefaultOutputDir,
		Delay:        DefaultDelay,
		SaveMetadata: true,
	}
}

// Read decodes TOML from r on top of the receiver's current values
// Keys missing from the document keep their previous value
func (c *Config) Read(r io.Reader) error {
	if _, err := toml.NewDecoder(r).Decode(c); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

// Write encodes the configuration as TOML
func (c *Config) Write(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile layers the TOML file at path over the receiver
func (c *Config) ReadFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := c.Read(f); err != nil {
		return fmt.Errorf("reading config from %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv loads .env files into the process environment
// Missing files are silently ignored and existing variables are not overridden
func LoadDotEnv(filenames ...string) {
	_ = godotenv.Load(filenames...)
}

// ReadDotEnv parses a .env file without touching the process environment
func ReadDotEnv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	return env, nil
}

// MapLookup adapts a map to the lookup signature ApplyEnv takes
func MapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// ApplyEnv layers WAYBACK_* variables over the receiver
// lookup is usually os.LookupEnv; empty values are ignored
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvOutputDir); ok {
		c.OutputDir = v
	}
	if v, ok := get(EnvDelay); ok {
		delay, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvDelay, v, err)
		}
		c.Delay = delay
	}
	if v, ok := get(EnvLimit); ok {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvLimit, v, err)
		}
		c.Limit = limit
	}
	if v, ok := get(EnvHistoryDB); ok {
		c.HistoryDB = v
	}
	if v, ok := get(EnvCDXEndpoint); ok {
		c.CDXEndpoint = v
	}
	if v, ok := get(EnvArchiveBase); ok {
		c.ArchiveBase = v
	}
	return nil
}

// Validate rejects settings that cannot produce a run
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if math.IsNaN(c.Delay) || math.IsInf(c.Delay, 0) {
		return fmt.Errorf("delay must be a finite number of seconds: %v", c.Delay)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative: %v", c.Delay)
	}
	if c.Delay >= maxDelaySeconds {
		return fmt.Errorf("delay too large: %v seconds", c.Delay)
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit cannot be negative: %d", c.Limit)
	}
	return nil
}

// Session builds the immutable session settings for targetURL
func (c *Config) Session(targetURL string) models.Session {
	return models.Session{
		URL:          targetURL,
		OutputDir:    c.OutputDir,
		Delay:        time.Duration(c.Delay * float64(time.Second)),
		Limit:        c.Limit,
		SaveMetadata: c.SaveMetadata,
	}
}
