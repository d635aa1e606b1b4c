package dotlinks

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/dotlinks/internal/version"
	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/logging"
	"github.com/arthur-debert/dotlinks/pkg/paths"
)

// Exit codes returned by the binary
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitConfig  = 2
)

// globalFlags are shared by every command.
type globalFlags struct {
	verbosity int
	noColor   bool
}

// NewRootCmd creates the root command for the dotlinks CLI.
func NewRootCmd() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:     "dotlinks",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(flags.verbosity)
			if flags.noColor {
				lipgloss.SetColorProfile(termenv.Ascii)
			}
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().CountVarP(&flags.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, MsgFlagNoColor)

	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Commands:"},
		&cobra.Group{ID: "misc", Title: "Other Commands:"},
	)

	rootCmd.AddCommand(newApplyCmd(&flags))
	rootCmd.AddCommand(newStatusCmd(&flags))
	rootCmd.AddCommand(newExplainCmd())
	rootCmd.AddCommand(newGenConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	rootCmd.SetHelpCommandGroupID("misc")
	rootCmd.SetCompletionCommandGroupID("misc")

	return rootCmd
}

// ExitCode maps an error returned by the root command to a process exit
// status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch errors.GetErrorCode(err) {
	case errors.ErrConfigLoad, errors.ErrConfigParse, errors.ErrConfigValid, errors.ErrInvalidInput:
		return ExitConfig
	}
	return ExitFailure
}

// defaultConfigFile is used when no configuration argument is given.
func defaultConfigFile() string {
	p, err := paths.New("", "")
	if err != nil {
		return paths.DefaultConfigFile
	}
	return p.ConfigFile()
}

func configArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultConfigFile()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat,
				version.Version, version.Commit, version.Date)
			return err
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func newManCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "man",
		Short:   MsgManShort,
		GroupID: "misc",
		Hidden:  true,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "DOTLINKS",
				Section: "1",
				Source:  "dotlinks " + version.Version,
				Manual:  "dotlinks manual",
			}
			root := cmd.Root()
			if dir == "" {
				return doc.GenMan(root, header, cmd.OutOrStdout())
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			return doc.GenManTree(root, header, dir)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", MsgFlagManDir)
	return cmd
}
