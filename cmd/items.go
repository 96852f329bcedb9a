package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/bnema/growth-dashboard/internal/adapters/codec"
	dashboardrender "github.com/bnema/growth-dashboard/internal/adapters/render/dashboard"
	"github.com/bnema/growth-dashboard/internal/application"
	"github.com/bnema/growth-dashboard/internal/domain"
	"github.com/bnema/growth-dashboard/internal/view"
	"github.com/spf13/cobra"
)

func newListCmd(app *app) *cobra.Command {
	var query string
	var sortKey string
	var order string
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list <kind>",
		Aliases: []string{"ls"},
		Short:   "List one collection (reading, job, vocabulary)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseKind(args[0])
			if err != nil {
				return err
			}
			parsedOrder, err := view.ParseOrder(order)
			if err != nil {
				return err
			}

			return app.withSession(cmd.Context(), cmd.ErrOrStderr(), func(s *session) error {
				items, err := s.dashboard.View(view.Query{Kind: kind, Text: query, SortKey: sortKey, Order: parsedOrder})
				if err != nil {
					return err
				}

				if asJSON {
					records := make([]any, 0, len(items))
					for _, item := range items {
						records = append(records, codec.ItemRecord(item))
					}
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(records)
				}

				rendered, err := dashboardrender.RenderItems(kind, items, dashboardrender.RenderOptions{Now: app.clock.Now()})
				if err != nil {
					return fmt.Errorf("render items: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Case-insensitive text filter")
	cmd.Flags().StringVar(&sortKey, "sort", "", "Sort key (date, title, status, rating, company, position, word, mastery)")
	cmd.Flags().StringVar(&order, "order", "asc", "Sort order (asc|desc)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newAddCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book, job application or word",
	}

	for _, kind := range domain.Kinds() {
		cmd.AddCommand(newAddKindCmd(app, kind))
	}

	return cmd
}

func newAddKindCmd(app *app, kind domain.Kind) *cobra.Command {
	fields := &itemFields{}

	cmd := &cobra.Command{
		Use:   addUse(kind),
		Short: "Add a " + addUse(kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			item := fields.apply(cmd, emptyItem(kind, 0))

			return app.withSession(cmd.Context(), cmd.ErrOrStderr(), func(s *session) error {
				res, err := s.dashboard.Create(cmd.Context(), item)
				if err != nil {
					return err
				}
				return writeResult(cmd, res)
			})
		},
	}

	fields.register(cmd, kind)
	for _, name := range requiredFields(kind) {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newUpdateCmd(app *app) *cobra.Command {
	fields := &itemFields{}

	cmd := &cobra.Command{
		Use:   "update <kind> <id>",
		Short: "Change fields of an existing item",
		Long:  "Change fields of an existing item. Only the flags you pass are changed; an id that matches nothing leaves everything untouched.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseKind(args[0])
			if err != nil {
				return err
			}
			id, err := parseItemID(args[1])
			if err != nil {
				return err
			}

			return app.withSession(cmd.Context(), cmd.ErrOrStderr(), func(s *session) error {
				key := domain.Key{Kind: kind, ID: id}
				base, ok := s.dashboard.Current().Find(key)
				if !ok {
					base = emptyItem(kind, id)
				}

				res, err := s.dashboard.Update(cmd.Context(), fields.apply(cmd, base))
				if err != nil {
					return err
				}
				return writeResult(cmd, res)
			})
		},
	}

	fields.registerAll(cmd)

	return cmd
}

func newDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <kind> <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete one or more items of a collection in a single step",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseKind(args[0])
			if err != nil {
				return err
			}

			sel := domain.NewSelection()
			for _, raw := range args[1:] {
				id, err := parseItemID(raw)
				if err != nil {
					return err
				}
				sel.Add(domain.Key{Kind: kind, ID: id})
			}

			return app.withSession(cmd.Context(), cmd.ErrOrStderr(), func(s *session) error {
				res, err := s.dashboard.BatchDelete(cmd.Context(), sel)
				if err != nil {
					return err
				}
				return writeResult(cmd, res)
			})
		},
	}
}

func writeResult(cmd *cobra.Command, res application.Result) error {
	out := cmd.OutOrStdout()

	var err error
	switch {
	case !res.Changed:
		_, err = fmt.Fprintf(out, "%s: nothing matched, no change\n", res.Action)
	case res.Item != nil:
		_, err = fmt.Fprintf(out, "%s %s\n", res.Action, res.Item.Key())
	case res.Removed > 0:
		_, err = fmt.Fprintf(out, "%s: removed %d\n", res.Action, res.Removed)
	default:
		_, err = fmt.Fprintf(out, "%s\n", res.Action)
	}

	return err
}

func parseItemID(raw string) (domain.ItemID, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", raw)
	}

	return domain.ItemID(id), nil
}

func addUse(kind domain.Kind) string {
	switch kind {
	case domain.KindReading:
		return "book"
	case domain.KindJob:
		return "job"
	default:
		return "word"
	}
}

func emptyItem(kind domain.Kind, id domain.ItemID) domain.Item {
	switch kind {
	case domain.KindReading:
		return domain.Book{ID: id}
	case domain.KindJob:
		return domain.Job{ID: id}
	default:
		return domain.Word{ID: id}
	}
}

func requiredFields(kind domain.Kind) []string {
	switch kind {
	case domain.KindReading:
		return []string{"title", "author"}
	case domain.KindJob:
		return []string{"company", "position"}
	default:
		return []string{"word", "translation", "language"}
	}
}

// itemFields binds the flags of every item variant. apply copies the flags
// the user actually set onto an item of the matching kind.
type itemFields struct {
	title       string
	author      string
	pages       int
	rating      int
	status      string
	company     string
	position    string
	word        string
	translation string
	language    string
	mastery     int
	tags        string
}

func (f *itemFields) register(cmd *cobra.Command, kind domain.Kind) {
	flags := cmd.Flags()
	switch kind {
	case domain.KindReading:
		flags.StringVar(&f.title, "title", "", "Book title")
		flags.StringVar(&f.author, "author", "", "Book author")
		flags.IntVar(&f.pages, "pages", 0, "Page count")
		flags.IntVar(&f.rating, "rating", 0, "Rating 0-5")
		flags.StringVar(&f.status, "status", "", "Status (reading|completed|wishlist)")
	case domain.KindJob:
		flags.StringVar(&f.company, "company", "", "Company")
		flags.StringVar(&f.position, "position", "", "Position")
		flags.StringVar(&f.status, "status", "", "Status (applied|interview|offer|rejected)")
	default:
		flags.StringVar(&f.word, "word", "", "Word")
		flags.StringVar(&f.translation, "translation", "", "Translation")
		flags.StringVar(&f.language, "language", "", "Language")
		flags.IntVar(&f.mastery, "mastery", 0, "Mastery 0-100")
	}
	flags.StringVar(&f.tags, "tags", "", "Comma separated tags")
}

func (f *itemFields) registerAll(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.title, "title", "", "Book title")
	flags.StringVar(&f.author, "author", "", "Book author")
	flags.IntVar(&f.pages, "pages", 0, "Page count")
	flags.IntVar(&f.rating, "rating", 0, "Rating 0-5")
	flags.StringVar(&f.status, "status", "", "Status for books or jobs")
	flags.StringVar(&f.company, "company", "", "Company")
	flags.StringVar(&f.position, "position", "", "Position")
	flags.StringVar(&f.word, "word", "", "Word")
	flags.StringVar(&f.translation, "translation", "", "Translation")
	flags.StringVar(&f.language, "language", "", "Language")
	flags.IntVar(&f.mastery, "mastery", 0, "Mastery 0-100")
	flags.StringVar(&f.tags, "tags", "", "Comma separated tags (replaces existing tags)")
}

func (f *itemFields) apply(cmd *cobra.Command, item domain.Item) domain.Item {
	set := cmd.Flags().Changed

	switch v := item.(type) {
	case domain.Book:
		if set("title") {
			v.Title = f.title
		}
		if set("author") {
			v.Author = f.author
		}
		if set("pages") {
			v.Pages = f.pages
		}
		if set("rating") {
			v.Rating = f.rating
		}
		if set("status") {
			v.Status = domain.BookStatus(f.status)
		}
		if set("tags") {
			v.Tags = domain.SplitTags(f.tags)
		}
		return v
	case domain.Job:
		if set("company") {
			v.Company = f.company
		}
		if set("position") {
			v.Position = f.position
		}
		if set("status") {
			v.Status = domain.JobStatus(f.status)
		}
		if set("tags") {
			v.Tags = domain.SplitTags(f.tags)
		}
		return v
	case domain.Word:
		if set("word") {
			v.Word = f.word
		}
		if set("translation") {
			v.Translation = f.translation
		}
		if set("language") {
			v.Language = f.language
		}
		if set("mastery") {
			v.Mastery = f.mastery
		}
		if set("tags") {
			v.Tags = domain.SplitTags(f.tags)
		}
		return v
	default:
		return item
	}
}
