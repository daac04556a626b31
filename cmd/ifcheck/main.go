package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/githubnext/ifcheck/pkg/balance"
	"github.com/githubnext/ifcheck/pkg/cli"
	"github.com/githubnext/ifcheck/pkg/config"
	"github.com/githubnext/ifcheck/pkg/console"
	"github.com/githubnext/ifcheck/pkg/constants"
	"github.com/spf13/cobra"
)

// Build-time variables set by GoReleaser
var (
	version = "dev"
)

// newRootCmd builds the command tree. The exit status of a check is stored in exitCode.
func newRootCmd(stdout, stderr io.Writer, exitCode *int) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   constants.CLIName + " <file>",
		Short: "Check that if/fi blocks in a shell script are balanced",
		Long: `Check that every conditional block opened with 'if' in a shell script is closed by a
matching 'fi', and that no 'fi' appears without an open block.

Comments and the contents of quoted strings are ignored, so keywords inside jq
programs or echo messages are not counted.

Exit status is 0 when the structure is balanced, 1 when structural errors were
found, and 2 when the file could not be checked.

A file named like a subcommand (version, mcp-server, help) must be given with a
path prefix, e.g. ./version.

Examples:
  ` + constants.CLIName + ` deploy.sh
  ` + constants.CLIName + ` --format pretty deploy.sh
  ` + constants.CLIName + ` --strict-branches --watch deploy.sh
  ` + constants.CLIName + ` --config .ifcheck.yaml build.sh`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &cli.UsageError{Message: fmt.Sprintf("expected exactly one file argument, got %d", len(args))}
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := balanceOptions(cmd)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			watch, _ := cmd.Flags().GetBool("watch")

			checkOpts := cli.CheckOptions{Balance: opts, Format: format, Verbose: verbose}
			if watch {
				code, err := cli.WatchAndCheck(cmd.Context(), stdout, stderr, args[0], checkOpts)
				*exitCode = code
				return err
			}

			report, err := cli.CheckFile(stdout, stderr, args[0], checkOpts)
			*exitCode = cli.ExitCode(report, err)
			return err
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &cli.UsageError{Message: err.Error()}
	})

	mcpServerCmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve the balance checker as an MCP tool over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing the check_balance tool.

Marker flags and --config set the defaults used by every tool call.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := balanceOptions(cmd)
			if err != nil {
				return err
			}
			if verbose {
				fmt.Fprintln(stderr, console.FormatInfoMessage("Serving check_balance over stdio"))
			}
			return cli.RunMCPServer(cmd.Context(), opts)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(stdout, console.FormatInfoMessage(fmt.Sprintf("%s version %s", constants.CLIName, version)))
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print scan statistics and watch events to stderr")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Read checker settings from a YAML file")
	rootCmd.PersistentFlags().String("open", "", "Keyword that opens a block (default \""+constants.DefaultOpenMarker+"\")")
	rootCmd.PersistentFlags().String("close", "", "Keyword that closes a block (default \""+constants.DefaultCloseMarker+"\")")
	rootCmd.PersistentFlags().Bool("strict-branches", false, "Report 'else' and 'elif' that appear outside an open block")
	rootCmd.PersistentFlags().Bool("legacy-comments", false, "Strip '#' comments before masking quoted strings")

	rootCmd.Flags().StringP("format", "f", cli.FormatText, "Output format: text, pretty or json")
	rootCmd.Flags().BoolP("watch", "w", false, "Re-check the file every time it changes")

	rootCmd.AddCommand(mcpServerCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// balanceOptions merges the config file, if any, with the marker flags. Flags win.
func balanceOptions(cmd *cobra.Command) (balance.Options, error) {
	var opts balance.Options

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return opts, err
		}
		if opts, err = cfg.Options(); err != nil {
			return opts, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("open") {
		opts.Open, _ = flags.GetString("open")
	}
	if flags.Changed("close") {
		opts.Close, _ = flags.GetString("close")
	}
	if flags.Changed("strict-branches") {
		opts.StrictBranches, _ = flags.GetBool("strict-branches")
	}
	if legacy, _ := flags.GetBool("legacy-comments"); legacy {
		opts.Order = balance.StripFirst
	}

	if err := opts.Validate(); err != nil {
		return opts, &cli.UsageError{Message: err.Error()}
	}
	return opts, nil
}

// run executes the CLI and returns the process exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	exitCode := constants.ExitValid
	rootCmd := newRootCmd(stdout, stderr, &exitCode)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, console.FormatErrorMessage(err.Error()))

		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", constants.CLIName)
		}
		return constants.ExitUsage
	}
	return exitCode
}

func main() {
	cli.SetVersionInfo(version)
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
