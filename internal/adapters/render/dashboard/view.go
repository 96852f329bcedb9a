package dashboard

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/growth-dashboard/internal/application"
	"github.com/bnema/growth-dashboard/internal/domain"
	"github.com/bnema/growth-dashboard/internal/history"
	"github.com/charmbracelet/lipgloss"
)

const (
	progressBarWidth = 24
	activityBarLimit = 30
)

type RenderOptions struct {
	Now time.Time
}

// Overview is everything the summary screen shows.
type Overview struct {
	Stats   application.Stats
	Monthly []application.MonthBucket
	History history.Info
	Unsaved int
}

func RenderOverview(ov Overview, opts RenderOptions) (string, error) {
	return run(func(s styles) string {
		return renderOverview(ov, opts, s)
	})
}

func RenderItems(kind domain.Kind, items []domain.Item, opts RenderOptions) (string, error) {
	return run(func(s styles) string {
		return renderItems(kind, items, opts, s)
	})
}

func RenderNotices(notices []application.Notice) (string, error) {
	return run(func(s styles) string {
		return renderNotices(notices, s)
	})
}

func RenderHistory(info history.Info, unsaved int) (string, error) {
	return run(func(s styles) string {
		return historyLine(info, unsaved, s)
	})
}

func renderOverview(ov Overview, opts RenderOptions, s styles) string {
	st := ov.Stats
	lines := []string{
		s.title.Render("Personal Growth Dashboard"),
		s.header.Render(fmt.Sprintf("books: %d  jobs: %d  words: %d", st.BooksTotal, st.JobsTotal, st.WordsTotal)),
	}

	progress := []string{
		s.title.Render("Progress"),
		statLine("reading", st.BooksProgress, fmt.Sprintf("%d of %d books completed", st.BooksCompleted, st.BooksTotal), s),
		statLine("career", st.JobsProgress, fmt.Sprintf("%d in pipeline, %d active", st.JobsInPipeline, st.JobsActive), s),
		statLine("language", st.HighMasteryRate, fmt.Sprintf("avg mastery %d%%, %d words at 75%%+", st.AverageMastery, st.HighMastery), s),
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, progress...)))

	if len(ov.Monthly) > 0 {
		activity := []string{s.title.Render(fmt.Sprintf("Activity (last %d months)", len(ov.Monthly)))}
		for _, bucket := range ov.Monthly {
			activity = append(activity, activityLine(bucket, s))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, activity...)))
	}

	lines = append(lines, s.section.Render(historyLine(ov.History, ov.Unsaved, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func statLine(label string, percent float64, meta string, s styles) string {
	percentStyle := lipgloss.NewStyle().Foreground(interpolateColor(percent, 0, 100))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.statKey.Render(fmt.Sprintf("%-9s", label+":")),
		" ",
		renderProgressBar(percent, progressBarWidth, s),
		" ",
		percentStyle.Render(fmt.Sprintf("%3.0f%%", clampPercent(percent))),
		" ",
		s.statMeta.Render(meta),
	)
}

func activityLine(b application.MonthBucket, s styles) string {
	total := min(b.BooksCompleted+b.JobsAdded+b.WordsAdded, activityBarLimit)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.statKey.Render(b.Label()),
		" ",
		s.statMeta.Render(fmt.Sprintf("books %d  jobs %d  words %d", b.BooksCompleted, b.JobsAdded, b.WordsAdded)),
		" ",
		s.barFill.Render(strings.Repeat("#", total)),
	)
}

func historyLine(info history.Info, unsaved int, s styles) string {
	line := s.header.Render(fmt.Sprintf(
		"history: %d/%d (capacity %d)  undo: %s  redo: %s",
		info.Cursor+1, info.Len, info.Capacity, yesNo(info.CanUndo), yesNo(info.CanRedo),
	))
	if unsaved > 0 {
		line += " " + s.warning.Render(fmt.Sprintf("[%d unsaved]", unsaved))
	}

	return line
}

func renderItems(kind domain.Kind, items []domain.Item, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render(collectionTitle(kind)),
		s.header.Render(fmt.Sprintf("items: %d", len(items))),
	}

	if len(items) == 0 {
		lines = append(lines, s.empty.Render(emptyMessage(kind)))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, item := range items {
		lines = append(lines, s.section.Render(renderItem(item, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderItem(item domain.Item, opts RenderOptions, s styles) string {
	var parts []string
	switch v := item.(type) {
	case domain.Book:
		parts = append(parts,
			s.item.Render(fmt.Sprintf("[%d] %s", v.ID, v.Title)),
			s.detail.Render(fmt.Sprintf("by %s  %d pages  %s  %s", v.Author, v.Pages, v.Status, ratingStars(v.Rating))),
		)
	case domain.Job:
		parts = append(parts,
			s.item.Render(fmt.Sprintf("[%d] %s", v.ID, v.Company)),
			s.detail.Render(fmt.Sprintf("%s  %s", v.Position, v.Status)),
		)
	case domain.Word:
		masteryStyle := lipgloss.NewStyle().Foreground(interpolateColor(float64(v.Mastery), 0, 100))
		parts = append(parts,
			s.item.Render(fmt.Sprintf("[%d] %s", v.ID, v.Word)),
			s.detail.Render(fmt.Sprintf("%s (%s)", v.Translation, v.Language)),
			lipgloss.JoinHorizontal(
				lipgloss.Top,
				s.statKey.Render("mastery:"),
				" ",
				renderProgressBar(float64(v.Mastery), progressBarWidth, s),
				" ",
				masteryStyle.Render(fmt.Sprintf("%d%%", v.Mastery)),
			),
		)
	default:
		return s.warning.Render(fmt.Sprintf("unsupported item %T", item))
	}

	meta := s.statMeta.Render(formatAdded(item.AddedAt(), opts.Now))
	if tags := item.Labels(); len(tags) > 0 {
		meta += "  " + s.tag.Render("#"+strings.Join(tags, " #"))
	}
	parts = append(parts, meta)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderNotices(notices []application.Notice, s styles) string {
	if len(notices) == 0 {
		return s.empty.Render("No notices.")
	}

	lines := make([]string, 0, len(notices))
	for _, n := range notices {
		style := s.noticeInfo
		switch n.Level {
		case application.NoticeSuccess:
			style = s.noticeOK
		case application.NoticeWarning:
			style = s.noticeWarn
		case application.NoticeError:
			style = s.noticeErr
		}
		lines = append(lines, style.Render(fmt.Sprintf("[%s] %s", n.Level, n.Message)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func collectionTitle(kind domain.Kind) string {
	switch kind {
	case domain.KindReading:
		return "Reading List"
	case domain.KindJob:
		return "Job Applications"
	case domain.KindVocabulary:
		return "Vocabulary"
	default:
		return string(kind)
	}
}

func emptyMessage(kind domain.Kind) string {
	switch kind {
	case domain.KindReading:
		return "No books yet. Add one with `gd add book`."
	case domain.KindJob:
		return "No job applications yet. Add one with `gd add job`."
	case domain.KindVocabulary:
		return "No words yet. Add one with `gd add word`."
	default:
		return "Nothing here."
	}
}

func ratingStars(rating int) string {
	if rating <= 0 {
		return "unrated"
	}
	rating = min(rating, 5)

	return strings.Repeat("*", rating) + strings.Repeat(".", 5-rating)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func renderProgressBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	fraction := clampPercent(percent) / 100.0
	filled := int(math.Round(float64(width) * fraction))
	filled = max(0, min(filled, width))

	empty := width - filled
	fillSegment := s.barFill.Render(strings.Repeat("=", filled))
	emptySegment := s.barEmpty.Render(strings.Repeat("-", empty))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		fillSegment,
		emptySegment,
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatAdded(added, now time.Time) string {
	if added.IsZero() {
		return "added: unknown"
	}
	if now.IsZero() || added.After(now) {
		return "added " + added.Format("02 Jan 2006")
	}

	days := int(now.Sub(added).Hours() / 24)
	switch {
	case days == 0:
		return "added today"
	case days == 1:
		return "added 1 day ago"
	case days < 60:
		return fmt.Sprintf("added %d days ago", days)
	default:
		return "added " + added.Format("02 Jan 2006")
	}
}

// interpolateColor maps value onto the 240..255 greyscale ramp.
func interpolateColor(value, lo, hi float64) lipgloss.Color {
	if hi == lo {
		return lipgloss.Color("255")
	}

	normalized := (value - lo) / (hi - lo)
	normalized = math.Max(0, math.Min(normalized, 1))

	const base, target = 240.0, 255.0
	return lipgloss.Color(fmt.Sprintf("%d", int(base+(target-base)*normalized)))
}
