package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vovakirdan/roomchat-go/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// Global flags
	configPath string
	serverURL  string
	userName   string
	roomID     string
	locale     string
	logFile    string
	verbose    bool

	settings *config.Config
	logger   *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "roomchat",
	Short: "Terminal client for room chat servers",
	Long: `roomchat joins a chat room over WebSocket.

Run without arguments to open the interactive interface. Use "roomchat line"
for a plain stdin/stdout client.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings(cmd.Flags())
		if err != nil {
			return err
		}
		settings = cfg

		logger, err = newLogger(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runTUI,
}

var lineCmd = &cobra.Command{
	Use:   "line",
	Short: "Chat from stdin/stdout",
	Long: `Reads lines from stdin and sends them to the room.

Commands:
  /msg <user> <text>   private message
  /img <path>          upload and share an image
  /who                 show who is online
  /quit                log out and exit`,
	Args: cobra.NoArgs,
	RunE: runLineCmd,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "roomchat", version)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultPath(), "config file")
	flags.StringVarP(&serverURL, "server", "s", "", "WebSocket server URL (ws:// or wss://)")
	flags.StringVarP(&userName, "name", "n", "", "display name")
	flags.StringVarP(&roomID, "room", "r", "", "room to join (default \"public\")")
	flags.StringVar(&locale, "locale", "", "notice language: en or pt")
	flags.StringVar(&logFile, "log-file", "", "write logs to this file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(lineCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
