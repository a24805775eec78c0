// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Work-Fort/Dist/pkg/config"
)

// ErrCancelled is returned when the user interrupts a running task
var ErrCancelled = errors.New("operation cancelled")

// TaskFunc is the work shown by RunProgress. It reports progress in [0,1]
// and short phase descriptions through the callbacks.
type TaskFunc func(ctx context.Context, progress func(float64), status func(string)) error

// progressUpdateMsg carries a progress value
type progressUpdateMsg struct {
	percent float64
}

// statusUpdateMsg carries a phase description
type statusUpdateMsg struct {
	status string
}

// taskDoneMsg carries the task result
type taskDoneMsg struct {
	err error
}

type progressModel struct {
	title    string
	status   string
	progress progress.Model
	spinner  spinner.Model

	cancel context.CancelFunc
	task   TaskFunc
	ctx    context.Context

	progressCh chan float64
	statusCh   chan string
	doneCh     chan error

	err       error
	cancelled bool
	done      bool
}

func newProgressModel(ctx context.Context, title string, task TaskFunc) progressModel {
	theme := config.CurrentTheme

	prog := progress.New(progress.WithGradient(theme.Secondary, theme.Primary))
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = theme.InfoStyle()

	ctx, cancel := context.WithCancel(ctx)

	return progressModel{
		title:      title,
		status:     "Starting",
		progress:   prog,
		spinner:    spin,
		ctx:        ctx,
		cancel:     cancel,
		task:       task,
		progressCh: make(chan float64, 10),
		statusCh:   make(chan string, 10),
		doneCh:     make(chan error, 1),
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runTask(), m.waitForProgress())
}

// runTask executes the task in a goroutine, feeding the channels
func (m progressModel) runTask() tea.Cmd {
	return func() tea.Msg {
		last := -1.0
		progressCallback := func(percent float64) {
			// Only report every 1% to avoid flooding the UI
			if percent-last < 0.01 && percent < 1.0 {
				return
			}
			last = percent
			select {
			case m.progressCh <- percent:
			default:
			}
		}
		statusCallback := func(status string) {
			select {
			case m.statusCh <- status:
			default:
				log.Debugf("runTask: Status channel full, skipped %s", status)
			}
		}

		m.doneCh <- m.task(m.ctx, progressCallback, statusCallback)
		return nil
	}
}

// waitForProgress returns a command that reads the next update
func (m progressModel) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		select {
		case percent := <-m.progressCh:
			return progressUpdateMsg{percent: percent}
		case status := <-m.statusCh:
			return statusUpdateMsg{status: status}
		case err := <-m.doneCh:
			return taskDoneMsg{err: err}
		}
	}
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "esc" {
			// Wait for the task to observe cancellation before quitting
			m.cancelled = true
			m.status = "Cancelling"
			m.cancel()
		}
		return m, nil

	case progressUpdateMsg:
		cmd := m.progress.SetPercent(msg.percent)
		return m, tea.Batch(cmd, m.waitForProgress())

	case statusUpdateMsg:
		m.status = msg.status
		return m, m.waitForProgress()

	case taskDoneMsg:
		m.done = true
		m.err = msg.err
		m.cancel()
		return m, tea.Quit

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.progress.Width = min(msg.Width-4, 60)
		return m, nil
	}

	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}

	theme := config.CurrentTheme
	var b strings.Builder
	b.WriteString(theme.TitleStyle().Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.spinner.View() + " " + m.status)
	b.WriteString("\n\n")
	b.WriteString(m.progress.View())
	b.WriteString("\n\n")
	b.WriteString(theme.SubtleStyle().Render("ctrl+c to cancel"))
	b.WriteString("\n")
	return b.String()
}

// RunProgress runs task behind a spinner and progress bar on stderr
func RunProgress(ctx context.Context, title string, task TaskFunc) error {
	m := newProgressModel(ctx, title, task)

	final, err := tea.NewProgram(m, tea.WithOutput(os.Stderr), tea.WithContext(ctx)).Run()
	if err != nil {
		m.cancel()
		return err
	}

	fm := final.(progressModel)
	if fm.cancelled && fm.err != nil {
		return ErrCancelled
	}
	return fm.err
}
