package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	dashboardrender "github.com/bnema/growth-dashboard/internal/adapters/render/dashboard"
	"github.com/bnema/growth-dashboard/internal/application"
	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
)

const shellPrompt = "gd> "

var errInvalidShellLine = errors.New("invalid shell line")

func newShellCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session with undo and redo",
		Long:  "Interactive session on one loaded dashboard. Every command of gd is available, plus undo, redo, history and notices. History lives as long as the session.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withSession(cmd.Context(), cmd.ErrOrStderr(), func(s *session) error {
				app.active = s
				defer func() { app.active = nil }()

				return runShell(cmd, app, s)
			})
		},
	}
}

func runShell(cmd *cobra.Command, app *app, s *session) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	for {
		_, _ = fmt.Fprint(out, shellPrompt)
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			return scanner.Err()
		}

		args, err := splitShellLine(scanner.Text())
		if err != nil {
			_, _ = fmt.Fprintln(errOut, "Error:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "exit", "quit":
			return nil
		case "undo":
			err = shellNavigate(cmd, s, application.UndoAction{})
		case "redo":
			err = shellNavigate(cmd, s, application.RedoAction{})
		case "history":
			err = writeHistory(out, s)
		case "notices":
			err = printNotices(out, s.notices.Recent(application.DefaultNoticeCapacity))
		default:
			err = runShellCommand(cmd, app, args)
		}
		if err != nil {
			_, _ = fmt.Fprintln(errOut, "Error:", err)
		}

		if err := s.syncer.Flush(cmd.Context()); err != nil {
			_, _ = fmt.Fprintln(errOut, "Error:", err)
		}
		if err := printNotices(errOut, visibleNotices(s.notices.Drain())); err != nil {
			_, _ = fmt.Fprintln(errOut, "Error:", err)
		}
	}
}

func shellNavigate(cmd *cobra.Command, s *session, action application.Action) error {
	res, err := s.dashboard.Dispatch(cmd.Context(), action)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (%d changes)\n", res.Action, len(res.Changes)); err != nil {
		return err
	}

	return writeHistory(cmd.OutOrStdout(), s)
}

func writeHistory(w io.Writer, s *session) error {
	rendered, err := dashboardrender.RenderHistory(s.dashboard.History(), s.dashboard.Unsaved())
	if err != nil {
		return fmt.Errorf("render history: %w", err)
	}

	_, err = fmt.Fprintln(w, rendered)
	return err
}

// runShellCommand executes one line on a fresh command tree so flag values
// never leak between lines.
func runShellCommand(parent *cobra.Command, app *app, args []string) error {
	root := &cobra.Command{
		Use:           "gd",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSessionCmds(app)...)
	root.AddCommand(newInsightsCmd(app))
	root.SetOut(parent.OutOrStdout())
	root.SetErr(parent.ErrOrStderr())
	root.SetIn(parent.InOrStdin())
	root.SetArgs(args)

	return root.ExecuteContext(parent.Context())
}

// splitShellLine splits a line into words with shell quoting rules. Environment
// variables and backticks are left as typed.
func splitShellLine(line string) ([]string, error) {
	args, err := shellwords.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidShellLine, err)
	}
	if len(args) == 0 {
		return nil, nil
	}

	return args, nil
}
