package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/growth-dashboard/internal/application"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type insightDoneMsg struct {
	result application.InsightResult
}

type insightSpinnerModel struct {
	spinner spinner.Model
	label   string
	wait    tea.Cmd
	result  application.InsightResult
	done    bool
}

func newInsightSpinnerModel(label string, wait tea.Cmd) insightSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return insightSpinnerModel{
		spinner: s,
		label:   label,
		wait:    wait,
	}
}

func (m insightSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.wait)
}

func (m insightSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case insightDoneMsg:
		m.done = true
		m.result = msg.result
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m insightSpinnerModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

// runInsightSpinner shows a spinner on output until the result channel
// delivers.
func runInsightSpinner(ctx context.Context, output io.Writer, label string, results <-chan application.InsightResult) (application.InsightResult, error) {
	waitCmd := func() tea.Msg {
		return insightDoneMsg{result: <-results}
	}

	p := tea.NewProgram(
		newInsightSpinnerModel(label, waitCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return application.InsightResult{}, err
	}

	result, ok := finalModel.(insightSpinnerModel)
	if !ok {
		return application.InsightResult{}, fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.result, nil
}
