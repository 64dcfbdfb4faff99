package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"dydl/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage dydl configuration files.

Configuration is loaded in layers:
  - Command line flags (highest priority)
  - Environment variables (DYDL_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created at ~/.config/dydl/config.yaml unless a different
path is specified with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration merged from all sources.

The cookie value is masked for security.`,
	Run: runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Validate the configuration for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Scope names, limits and value ranges
  - Date window format
  - Output directory accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

const exampleConfig = `# dydl configuration file
#
# Environment variables prefixed with DYDL_ override these values,
# for example DYDL_COOKIE and DYDL_OUTPUT_DIR.

# Links processed on a plain 'dydl download' run
links: []

# Platform session
douyin:
  # Raw Cookie header value from a logged-in browser session.
  # Prefer 'dydl auth login' over keeping the cookie in this file.
  cookie: ""
  user_agent: ""

# Scopes enumerated for user profile links: post, like, mix, music
scopes:
  - post

# Per-scope limits (0 = unlimited). allmix counts a user's collections,
# the rest count items.
number:
  post: 0
  like: 0
  allmix: 0
  music: 0

# Per-scope incremental mode: skip items recorded in the database
increase:
  post: true
  like: true
  mix: true
  music: true

# Publish-date window for post and like enumeration (2006-01-02)
window:
  start: ""
  end: ""

# Optional artifacts and transfer timeout
download:
  music: true
  cover: true
  json: true
  timeout_seconds: 60

rate_limit:
  requests_per_second: 1.0

retry:
  max_attempts: 3

output:
  base_directory: "./downloads"

# Persistent acquisition database used for incremental runs
database:
  enabled: true
  path: ""

logging:
  # Log level: debug, info, warn, error
  level: "info"
  # Log file path; empty logs to stderr only
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) {
	path := configFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintln(os.Stderr, "Configuration file already exists:", path)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", path)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to create config directory:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(path, []byte(exampleConfig), 0600); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to create configuration file:", err)
		os.Exit(1)
	}

	fmt.Println("Configuration file created:", path)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Store a cookie with 'dydl auth login' (or edit the file)")
	fmt.Println("2. Run 'dydl config validate' to check the configuration")
	fmt.Println("3. Start downloading with 'dydl download <link>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	// Mask the cookie before display
	display := *cfg
	if display.Douyin.Cookie != "" {
		if len(display.Douyin.Cookie) > 8 {
			display.Douyin.Cookie = display.Douyin.Cookie[:4] + "..." + display.Douyin.Cookie[len(display.Douyin.Cookie)-4:]
		} else {
			display.Douyin.Cookie = "***"
		}
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to format configuration:", err)
		os.Exit(1)
	}

	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (DYDL_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Printf("3. Configuration file: %s\n", config.DefaultConfigPath())
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	path := configFile
	if path == "" {
		path = config.DefaultConfigPath()
	}
	fmt.Println("Validating configuration:", path)

	// Load runs Validate internally
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Configuration validation failed:", err)
		os.Exit(1)
	}

	var warnings []string
	if cfg.Douyin.Cookie == "" {
		warnings = append(warnings, "no cookie configured, some endpoints may refuse requests")
	}
	if err := os.MkdirAll(cfg.Output.BaseDirectory, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot create output directory: %v\n", err)
		os.Exit(1)
	}

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Println("\nConfiguration is valid")
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Output directory: %s\n", cfg.Output.BaseDirectory)
	fmt.Printf("  Scopes: %s\n", strings.Join(cfg.Scopes, ", "))
	fmt.Printf("  Rate limit: %.1f requests/second\n", cfg.RateLimit.RequestsPerSecond)
	fmt.Printf("  Max retries: %d\n", cfg.Retry.MaxAttempts)
	fmt.Printf("  Database: %v (%s)\n", cfg.Database.Enabled, cfg.DatabasePath())
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
