package dotlinks

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotlinks/pkg/approval"
	"github.com/arthur-debert/dotlinks/pkg/config"
	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/logging"
	"github.com/arthur-debert/dotlinks/pkg/paths"
	"github.com/arthur-debert/dotlinks/pkg/reconcile"
	"github.com/arthur-debert/dotlinks/pkg/transport"
	"github.com/arthur-debert/dotlinks/pkg/ui"
	"github.com/arthur-debert/dotlinks/pkg/ui/preview"
)

// runOptions carries the flags of apply and status.
type runOptions struct {
	global      *globalFlags
	format      string
	yes         bool
	failOnError bool
	mode        reconcile.Mode
}

func (o runOptions) outputFormat() (ui.Format, error) {
	f, err := ui.ParseFormat(o.format)
	if err != nil {
		return f, errors.Wrap(err, errors.ErrInvalidInput, "invalid --format")
	}
	if f == ui.FormatAuto && o.global != nil && o.global.noColor {
		f = ui.FormatText
	}
	return f, nil
}

// runReconcile loads the configuration at path and runs the engine in
// opts.mode, writing previews and the summary to cmd's output.
func runReconcile(cmd *cobra.Command, path string, opts runOptions) error {
	logger := logging.GetLogger("cli")
	logging.LogCommand(logger, cmd.Name(), []string{path})
	defer logging.LogOperationStart(logger, cmd.Name())()

	format, err := opts.outputFormat()
	if err != nil {
		return err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	p, err := paths.New(cfg.Settings.RepoDir, cfg.Settings.StateDir)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigValid, MsgErrInitPaths)
	}

	factory, err := transport.New(cfg, p, transport.Options{})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := factory.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("Failed to close transport")
		}
	}()

	out := cmd.OutOrStdout()
	renderer := preview.New(out, format)
	gate := approval.New(renderer, opts.yes, os.Stdin, os.Stdout)
	engine := reconcile.New(factory, p, gate)

	report, err := engine.Run(cmd.Context(), cfg.Dotfiles, opts.mode)
	if err != nil {
		return err
	}

	switch opts.mode {
	case reconcile.ModeStatus:
		err = renderer.Status(report)
	case reconcile.ModeDryRun:
		err = renderDryRun(out, renderer, report)
	default:
		err = renderApply(out, renderer, report)
	}
	if err != nil {
		return err
	}

	if opts.failOnError && report.HasFailures() {
		return errors.Newf(errors.ErrExecutionFailure, MsgFailedRepos,
			report.Count(reconcile.OutcomeFailed), len(report.Repos))
	}
	return nil
}

func renderDryRun(out io.Writer, r *preview.Renderer, report reconcile.RunReport) error {
	if r.Format() == ui.FormatJSON {
		return r.Summary(report)
	}
	for _, rr := range report.Repos {
		if rr.Err != nil {
			problem(out, rr)
			continue
		}
		if err := r.Preview(rr.Preview); err != nil {
			return err
		}
	}
	return r.Summary(report)
}

// renderApply writes what went wrong; previews were already shown by the
// approval gate.
func renderApply(out io.Writer, r *preview.Renderer, report reconcile.RunReport) error {
	if r.Format() != ui.FormatJSON {
		for _, rr := range report.Repos {
			if rr.Err != nil {
				problem(out, rr)
			}
		}
	}
	return r.Summary(report)
}

func problem(out io.Writer, rr reconcile.RepoReport) {
	_, _ = fmt.Fprintf(out, MsgRepoProblem, rr.User, rr.Repo, rr.Err.Error())
}

func newApplyCmd(global *globalFlags) *cobra.Command {
	opts := runOptions{global: global}
	var dryRun bool

	cmd := &cobra.Command{
		Use:     "apply [config]",
		Short:   MsgApplyShort,
		Long:    MsgApplyLong,
		Example: MsgApplyExample,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.mode = reconcile.ModeApply
			if dryRun {
				opts.mode = reconcile.ModeDryRun
			}
			return runReconcile(cmd, configArg(args), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, MsgFlagYes)
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)
	cmd.Flags().BoolVar(&opts.failOnError, "fail-on-error", false, MsgFlagFailOnError)
	cmd.Flags().StringVar(&opts.format, "format", "auto", MsgFlagFormat)
	return cmd
}

func newStatusCmd(global *globalFlags) *cobra.Command {
	opts := runOptions{global: global, mode: reconcile.ModeStatus}

	cmd := &cobra.Command{
		Use:     "status [config]",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		Example: MsgStatusExample,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, configArg(args), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.failOnError, "fail-on-error", false, MsgFlagFailOnError)
	cmd.Flags().StringVar(&opts.format, "format", "auto", MsgFlagFormat)
	return cmd
}
