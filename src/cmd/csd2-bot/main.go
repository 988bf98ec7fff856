package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"csd2-bot/src/config"
	"csd2-bot/src/runtimeinit"
)

type cliOptions struct {
	configPath string
	logLevel   string
	noTray     bool
}

func main() {
	// The tray needs the main goroutine pinned to the OS thread that owns
	// the message loop.
	runtime.LockOSThread()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"csd2-bot"}
	}
	cmd := newRootCmd(&cliOptions{})
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "csd2-bot",
		Short:         "Plays the cooking minigame by reading orders and pressing ingredient keys",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.json (overrides "+config.ConfigPathEnvVar+")")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.Flags().BoolVar(&opts.noTray, "no-tray", false, "Do not show the tray icon")

	cmd.AddCommand(
		newRunCmd(opts),
		newReadCmd(opts),
		newMapCmd(opts),
		newRecordCmd(opts),
		newReplayCmd(opts),
		newStopCmd(),
	)
	return cmd
}

func bootstrap(opts *cliOptions) (*config.Config, *zap.Logger, error) {
	return runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			ConfigPathOverride: opts.configPath,
			LogLevelOverride:   opts.logLevel,
		},
	})
}

// normalizeLegacyArgs accepts single-dash long flags ("-config x") the way
// older builds did.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"config", "log-level", "no-tray", "copy", "available"} {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}
