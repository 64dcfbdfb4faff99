package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"dydl/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Douyin credentials",
	Long: `Manage stored Douyin credentials securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (DYDL_COOKIE, read-only)

Never share your cookie or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store a Douyin cookie securely",
	Long: `Store a Douyin session cookie securely in the system keychain or an
encrypted file.

To get the cookie value:
1. Log into douyin.com in your browser
2. Open Developer Tools (F12) and go to the Network tab
3. Reload the page and select any www.douyin.com request
4. Copy the full value of the Cookie request header`,
	Example: `  # Interactive login
  dydl auth login

  # Login with an account name
  dydl auth login myaccount`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:     "logout [name]",
	Aliases: []string{"remove"},
	Short:   "Remove stored credentials",
	Long: `Remove stored Douyin credentials.

If no account name is provided, you will be shown a list of stored
accounts to choose from.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored Douyin accounts with sanitized credential information.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize credential manager:", err)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)

	var name string
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		fmt.Print("Account name: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to read account name:", err)
			os.Exit(1)
		}
		name = strings.TrimSpace(input)
	}
	if name == "" {
		fmt.Fprintln(os.Stderr, "Account name is required")
		os.Exit(1)
	}

	if existing, _ := manager.Retrieve(name); existing != nil {
		fmt.Printf("Account %q already exists. Update credentials? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	var cookieValue string
	for {
		fmt.Print("Cookie value (hidden as you type): ")
		cookieValue, err = readSecret()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to read cookie:", err)
			os.Exit(1)
		}

		// A real logged-in cookie carries many key=value pairs
		if len(cookieValue) < 20 || !strings.Contains(cookieValue, "=") {
			fmt.Println("That doesn't look like a valid cookie header value.")
			fmt.Println("It should be a long string of key=value pairs separated by '; '.")
			fmt.Print("Try again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				os.Exit(1)
			}
			continue
		}
		break
	}

	fmt.Print("User Agent (press Enter to use default): ")
	userAgent, _ := reader.ReadString('\n')
	userAgent = strings.TrimSpace(userAgent)

	account := &auth.Account{
		Name:         name,
		Cookie:       cookieValue,
		UserAgent:    userAgent,
		LastModified: time.Now(),
	}

	if err := manager.Store(account); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to store credentials:", err)
		os.Exit(1)
	}

	sanitized := auth.SanitizeAccount(account)
	fmt.Printf("\nAccount saved: %s (cookie %s)\n", sanitized.Name, sanitized.Cookie)
	fmt.Println("\nUse it with:")
	fmt.Printf("  dydl download <link> --account %s\n", name)
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize credential manager:", err)
		os.Exit(1)
	}

	if len(args) > 0 {
		if err := manager.Delete(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, "Failed to remove account:", err)
			os.Exit(1)
		}
		fmt.Println("Account removed:", args[0])
		return
	}

	accounts, err := manager.List()
	if err != nil || len(accounts) == 0 {
		fmt.Println("No stored accounts found.")
		return
	}

	fmt.Println("Select account to remove:")
	for i, account := range accounts {
		fmt.Printf("  %d. %s\n", i+1, account.Name)
	}
	fmt.Println("  0. Cancel")

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nChoice: ")
	input, _ := reader.ReadString('\n')

	var choice int
	fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)

	if choice < 1 || choice > len(accounts) {
		return
	}

	name := accounts[choice-1].Name
	if err := manager.Delete(name); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to remove account:", err)
		os.Exit(1)
	}
	fmt.Println("Account removed:", name)
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize credential manager:", err)
		os.Exit(1)
	}

	accounts, err := manager.List()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to list accounts:", err)
		os.Exit(1)
	}

	if len(accounts) == 0 {
		fmt.Println("No stored accounts. Use 'dydl auth login' to add one.")
		return
	}

	fmt.Println("Stored accounts:")
	fmt.Println()
	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("%d. Name: %s\n", i+1, sanitized.Name)
		fmt.Printf("   Cookie: %s\n", sanitized.Cookie)
		if sanitized.UserAgent != "" {
			fmt.Printf("   User Agent: %s\n", sanitized.UserAgent)
		}
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

// readSecret reads a value from stdin without echoing
func readSecret() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		value, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(value)), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
