package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"sshfan/internal/config"
	"sshfan/internal/dispatch"
	"sshfan/internal/hostdir"
	"sshfan/internal/inventory"
	"sshfan/internal/logging"
	"sshfan/internal/output"
	"sshfan/internal/progress"
	"sshfan/internal/sshx"

	"github.com/spf13/cobra"
)

var (
	// Build-time variables (set via -ldflags)
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"

	// Global configuration
	cfg *config.Config

	// CLI flags
	hosts          []string
	commands       []string
	hostConfig     string
	inventoryFile  string
	identityFile   string
	connectTimeout time.Duration
	logLevel       string
	logFormat      string
	quiet          bool
	showProgress   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "sshfan --hosts <hosts> --command <command> [more words...]",
	Short: "Run shell commands on many SSH hosts at once",
	Long: `sshfan is a fan-out command executor: it runs every given command on
every given host concurrently, streaming each host's stdout and stderr
back with per-host line prefixes. A failing or unreachable host never
aborts the run; its failure is reported inline and the other hosts keep
streaming.

Host identifiers are resolved through an ssh_config style host directory:
an identifier names a single alias, a whole host group (aliases sharing
the base name plus a single-digit suffix), or a literal hostname.

Examples:
  # One command on two hosts
  sshfan --hosts alpha,beta --command "uptime"

  # Host group: runs on web_1, web_2, ... as defined in ~/.ssh/config
  sshfan --hosts web --command "systemctl status nginx"

  # Several commands; trailing words extend the last command
  sshfan -H db -c "df -h" -c echo disk checked`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		configManager := config.NewManager()
		loadedCfg, err := configManager.Load()
		if err != nil {
			return &SetupError{Message: fmt.Sprintf("failed to load configuration: %v", err)}
		}
		cfg = loadedCfg

		if err := overrideConfigWithFlags(cmd); err != nil {
			return err
		}

		if len(hosts) == 0 {
			return &SetupError{Message: "at least one host is required via --hosts"}
		}
		if len(commands) == 0 && len(args) == 0 {
			return &SetupError{Message: "at least one command is required via --command"}
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(foldArgs(commands, args))
	},
}

func init() {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sshfan %s\n", version)
			fmt.Printf("Commit: %s\n", commit)
			fmt.Printf("Built: %s\n", buildTime)
		},
	}
	rootCmd.AddCommand(versionCmd)

	rootCmd.Flags().StringSliceVarP(&hosts, "hosts", "H", nil, "Host identifiers (comma-separated or repeated)")
	rootCmd.Flags().StringArrayVarP(&commands, "command", "c", nil, "Command to execute (repeatable)")
	rootCmd.Flags().StringVar(&hostConfig, "host-config", "", "Host alias configuration file (default ~/.ssh/config)")
	rootCmd.Flags().StringVar(&inventoryFile, "inventory", "", "YAML host inventory merged into the directory")
	rootCmd.Flags().StringVarP(&identityFile, "identity", "i", "", "SSH private key file")
	rootCmd.Flags().DurationVar(&connectTimeout, "connect-timeout", 30*time.Second, "Per-connection dial timeout")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (info, error)")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "text", "Log format (json, text)")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress non-error logs")
	rootCmd.Flags().BoolVar(&showProgress, "progress", false, "Show session progress on stderr")
}

// overrideConfigWithFlags applies explicitly set CLI flags over the loaded
// configuration, then re-validates.
func overrideConfigWithFlags(cmd *cobra.Command) error {
	if cmd.Flags().Changed("host-config") {
		cfg.HostConfig = hostConfig
	}
	if cmd.Flags().Changed("inventory") {
		cfg.Inventory = inventoryFile
	}
	if cmd.Flags().Changed("identity") {
		cfg.IdentityFile = identityFile
	}
	if cmd.Flags().Changed("connect-timeout") {
		cfg.ConnectTimeout = connectTimeout
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if cmd.Flags().Changed("quiet") {
		cfg.Quiet = quiet
	}
	if cmd.Flags().Changed("progress") {
		cfg.ShowProgress = showProgress
	}

	configManager := config.NewManager()
	if err := configManager.Validate(cfg); err != nil {
		return &SetupError{Message: fmt.Sprintf("configuration validation failed: %v", err)}
	}

	return nil
}

// foldArgs merges trailing unflagged tokens into the most recent command
// string. With no --command flag at all, the tokens form one command.
func foldArgs(commands, args []string) []string {
	if len(args) == 0 {
		return commands
	}

	trailing := strings.Join(args, " ")
	if len(commands) == 0 {
		return []string{trailing}
	}

	folded := make([]string, len(commands))
	copy(folded, commands)
	folded[len(folded)-1] = folded[len(folded)-1] + " " + trailing
	return folded
}

func run(commands []string) error {
	logger := logging.NewLoggerFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.Quiet)

	dir := hostdir.Load(cfg.HostConfig)
	logger.LogDirectoryLoad(cfg.HostConfig, dir.Len())

	if cfg.Inventory != "" {
		if err := inventory.MergeFile(cfg.Inventory, dir); err != nil {
			return &SetupError{Message: fmt.Sprintf("failed to load inventory: %v", err)}
		}
	}

	printer := output.NewPrinter(os.Stdout)
	dialer := sshx.NewDialer(logger, cfg.ConnectTimeout, cfg.IdentityFile)
	dispatcher := dispatch.New(dir, dialer, printer, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received shutdown signal, canceling run", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.ShowProgress {
		sessions := len(commands) * len(resolveAll(dir, hosts))
		tracker := progress.NewTracker(sessions, os.Stderr, true)
		dispatcher.SetProgress(tracker)
		defer tracker.Finish()
	}

	summary, err := dispatcher.Run(ctx, hosts, commands)
	if err != nil {
		return &ExecutionError{Message: fmt.Sprintf("run canceled: %v", err)}
	}

	if summary.Failed > 0 {
		return &ExecutionError{
			Message: fmt.Sprintf("%d/%d sessions failed to start", summary.Failed, summary.Sessions),
		}
	}

	return nil
}

// resolveAll expands identifiers for the progress total; the dispatcher
// resolves again for the run itself.
func resolveAll(dir *hostdir.Directory, identifiers []string) []string {
	var all []string
	for _, identifier := range identifiers {
		all = append(all, dir.Resolve(identifier)...)
	}
	return all
}

// ExecutionError represents an error during command execution (exit code 1)
type ExecutionError struct {
	Message string
}

func (e *ExecutionError) Error() string {
	return e.Message
}

// SetupError represents an error during setup/configuration (exit code 2)
type SetupError struct {
	Message string
}

func (e *SetupError) Error() string {
	return e.Message
}

// getExitCode determines the appropriate exit code based on error type
// Returns:
//   - 0: Success (all sessions completed)
//   - 1: Execution failure (one or more sessions failed)
//   - 2: Setup error (invalid arguments, configuration issues, etc.)
func getExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch err.(type) {
	case *SetupError:
		return 2
	case *ExecutionError:
		return 1
	default:
		return 2
	}
}
