package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bnema/growth-dashboard/internal/adapters/codec"
	"github.com/spf13/cobra"
)

const stdioPath = "-"

func newImportCmd(app *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all records with a JSON or YAML document",
		Long:  "Replace all records with a JSON or YAML document holding books, jobs and vocab. A document missing any of the three is rejected and nothing changes. Use - to read stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			parsed, err := resolveFormat(format, path)
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if path != stdioPath {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open import file: %w", err)
				}
				defer f.Close()
				r = f
			}

			snap, err := codec.Decode(r, parsed)
			if err != nil {
				return err
			}

			return app.withSession(cmd.Context(), cmd.ErrOrStderr(), func(s *session) error {
				res, err := s.dashboard.Import(cmd.Context(), snap)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d books, %d jobs, %d words (%d changes)\n",
					len(res.Snapshot.Books), len(res.Snapshot.Jobs), len(res.Snapshot.Vocab), len(res.Changes))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Input format (json|yaml); default from the file extension")

	return cmd
}

func newExportCmd(app *app) *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all records as JSON, YAML or CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := resolveFormat(format, output)
			if err != nil {
				return err
			}

			return app.withSession(cmd.Context(), cmd.ErrOrStderr(), func(s *session) error {
				path := output
				if path == "" {
					path = codec.DefaultFileName(app.clock.Now(), parsed)
				}

				if path == stdioPath {
					if err := codec.Encode(cmd.OutOrStdout(), s.dashboard.Current(), parsed); err != nil {
						return err
					}
					s.dashboard.MarkExported()
					return nil
				}

				if err := writeExportFile(path, func(w io.Writer) error {
					return codec.Encode(w, s.dashboard.Current(), parsed)
				}); err != nil {
					return err
				}
				s.dashboard.MarkExported()

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", path)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Output format (json|yaml|csv); default from --output or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default growth-dashboard-YYYY-MM-DD.<ext>)")

	return cmd
}

// resolveFormat prefers the explicit flag and falls back to the extension of
// path.
func resolveFormat(flag string, path string) (codec.Format, error) {
	if flag != "" {
		return codec.ParseFormat(flag)
	}
	if path == "" || path == stdioPath {
		return codec.FormatJSON, nil
	}

	return codec.FormatFromPath(path), nil
}

func writeExportFile(path string, encode func(io.Writer) error) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	return encode(f)
}
