package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dydl/pkg/auth"
	"dydl/pkg/config"
	"dydl/pkg/douyin"
	"dydl/pkg/logger"
	"dydl/pkg/scraper"
)

var (
	// Download command flags
	outputDir   string
	accountName string
	scopes      []string
	rateLimit   float64
	maxRetries  int
	windowStart string
	windowEnd   string
	noDatabase  bool
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download [links...]",
	Short: "Download content from Douyin share links",
	Long: `Download content from one or more Douyin share links.

Links can be video/note pages, v.douyin.com short links, user profiles,
collection pages or music pages. Links given on the command line are
processed after any links listed in the configuration file.

Most endpoints work better with a logged-in cookie. Store one with
'dydl auth login', set DYDL_COOKIE, or pass --cookie.`,
	Example: `  # Download a single video
  dydl download "https://v.douyin.com/abcdefg/"

  # Enumerate a user's posts and likes into a custom directory
  dydl download "https://www.douyin.com/user/MS4wLj..." --scopes post,like --output ./archive

  # Only posts published in a date range
  dydl download "https://www.douyin.com/user/MS4wLj..." --start 2024-01-01 --end 2024-06-30

  # Use a specific stored account
  dydl download "https://v.douyin.com/abcdefg/" --account myaccount`,
	Args: cobra.ArbitraryArgs,
	Run:  runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for downloads")
	downloadCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")
	downloadCmd.Flags().StringSliceVar(&scopes, "scopes", nil, "scopes to enumerate for user links (post, like, mix, music)")
	downloadCmd.Flags().Float64Var(&rateLimit, "rate-limit", 0, "requests per second")
	downloadCmd.Flags().IntVar(&maxRetries, "max-retries", 0, "maximum number of retry attempts")
	downloadCmd.Flags().StringVar(&windowStart, "start", "", "only items published on or after this date (2006-01-02)")
	downloadCmd.Flags().StringVar(&windowEnd, "end", "", "only items published on or before this date (2006-01-02)")
	downloadCmd.Flags().BoolVar(&noDatabase, "no-database", false, "disable the persistent acquisition database")
}

// Make download the default command when the first argument is a link
func init() {
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 && !isKnownCommand(args[0]) {
			runDownload(downloadCmd, args)
			return nil
		}
		return cmd.Help()
	}
	rootCmd.Args = cobra.ArbitraryArgs
}

func isKnownCommand(arg string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == arg || cmd.HasAlias(arg) {
			return true
		}
	}
	return false
}

func runDownload(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	// Flag overrides on top of file and environment values
	if outputDir != "" {
		cfg.Output.BaseDirectory = outputDir
	}
	if len(scopes) > 0 {
		cfg.Scopes = scopes
	}
	if rateLimit > 0 {
		cfg.RateLimit.RequestsPerSecond = rateLimit
	}
	if maxRetries > 0 {
		cfg.Retry.MaxAttempts = maxRetries
	}
	if windowStart != "" {
		cfg.Window.Start = windowStart
	}
	if windowEnd != "" {
		cfg.Window.End = windowEnd
	}
	if noDatabase {
		cfg.Database.Enabled = false
	}
	if cookie != "" {
		cfg.Douyin.Cookie = cookie
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("dydl starting")

	links := append([]string{}, cfg.Links...)
	for _, arg := range args {
		if link := strings.TrimSpace(arg); link != "" {
			links = append(links, link)
		}
	}
	if len(links) == 0 {
		fmt.Fprintln(os.Stderr, "No links to process. Pass links as arguments or list them in the config file.")
		os.Exit(1)
	}

	resolveCookie(cfg, log)

	signer := douyin.NopSigner{}
	client := douyin.NewClient(
		time.Duration(cfg.Download.TimeoutSeconds)*time.Second,
		cfg.Douyin.Cookie,
		cfg.Douyin.UserAgent,
		signer,
		log,
	)

	s, err := scraper.New(cfg, client, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize:", err)
		os.Exit(1)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snap, err := s.Run(ctx, links)

	fmt.Println()
	fmt.Println("Run summary:")
	fmt.Printf("  Items:      %d\n", snap.Total)
	fmt.Printf("  Downloaded: %d\n", snap.Success)
	fmt.Printf("  Skipped:    %d\n", snap.Skipped)
	fmt.Printf("  Failed:     %d\n", snap.Failed)
	if snap.Success+snap.Failed > 0 {
		fmt.Printf("  Success:    %.1f%%\n", snap.SuccessRate)
	}
	fmt.Printf("  Elapsed:    %s\n", snap.Elapsed.Round(time.Second))

	if err != nil {
		log.WithError(err).Error("run aborted")
		os.Exit(1)
	}
	if snap.Failed > 0 {
		os.Exit(1)
	}
}

// resolveCookie fills the session cookie from stored credentials when the
// config and environment left it empty
func resolveCookie(cfg *config.Config, log logger.Logger) {
	if cfg.Douyin.Cookie != "" {
		return
	}

	manager, err := auth.NewManager()
	if err != nil {
		log.WithError(err).Debug("credential manager unavailable")
		return
	}

	var account *auth.Account
	if accountName != "" {
		account, err = manager.Retrieve(accountName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Account %q not found. Use 'dydl auth list' to see stored accounts.\n", accountName)
			os.Exit(1)
		}
	} else {
		account, err = manager.RetrieveDefault()
		if err != nil {
			log.Warn("no cookie configured, some endpoints may refuse requests")
			return
		}
	}

	cfg.Douyin.Cookie = account.Cookie
	if account.UserAgent != "" {
		cfg.Douyin.UserAgent = account.UserAgent
	}
	log.WithField("account", account.Name).Info("using stored credentials")
}

// loadConfig loads the layered configuration, falling back to the default
// location when no --config flag is given
func loadConfig() *config.Config {
	path := configFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}
	return cfg
}
