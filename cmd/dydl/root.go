package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	cookie     string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dydl",
	Short: "A Douyin content downloader for videos, image posts, collections and music",
	Long: `dydl downloads content from Douyin share links.

Supported link types:
  - Video and image post links (including v.douyin.com short links)
  - User profile links (enumerates posts, likes and collections)
  - Collection (mix) links
  - Music links (enumerates items using the track)

Features:
  - Incremental runs backed by a local acquisition database
  - Watermark-free media with quality and fallback URL selection
  - Smart rate limiting and automatic retry with backoff
  - Secure cookie storage using the system keychain`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ~/.config/dydl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&cookie, "cookie", "", "raw Cookie header value for authenticated endpoints")

	rootCmd.SetVersionTemplate(`dydl {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
