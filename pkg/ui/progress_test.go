// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestProgressModel_StatusAndDone(t *testing.T) {
	m := newProgressModel(context.Background(), "Pulling jballerina-1.2.0", func(ctx context.Context, p func(float64), s func(string)) error {
		return nil
	})

	updated, _ := m.Update(statusUpdateMsg{status: "Downloading jballerina-1.2.0"})
	m = updated.(progressModel)
	if !strings.Contains(m.View(), "Downloading jballerina-1.2.0") {
		t.Errorf("view should show status:\n%s", m.View())
	}
	if !strings.Contains(m.View(), "Pulling jballerina-1.2.0") {
		t.Errorf("view should show title:\n%s", m.View())
	}

	boom := errors.New("boom")
	updated, cmd := m.Update(taskDoneMsg{err: boom})
	m = updated.(progressModel)
	if !m.done || !errors.Is(m.err, boom) {
		t.Errorf("done = %v, err = %v", m.done, m.err)
	}
	if cmd == nil {
		t.Fatal("task completion should quit the program")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if m.View() != "" {
		t.Error("finished view should be empty")
	}
}

func TestProgressModel_CtrlCCancelsContext(t *testing.T) {
	m := newProgressModel(context.Background(), "Pulling", func(ctx context.Context, p func(float64), s func(string)) error {
		return nil
	})

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(progressModel)

	if !m.cancelled {
		t.Error("ctrl+c should mark the model cancelled")
	}
	if cmd != nil {
		t.Error("ctrl+c should wait for the task instead of quitting immediately")
	}
	select {
	case <-m.ctx.Done():
	default:
		t.Error("ctrl+c should cancel the task context")
	}
}

func TestProgressModel_RunTaskFeedsChannels(t *testing.T) {
	m := newProgressModel(context.Background(), "Pulling", func(ctx context.Context, p func(float64), s func(string)) error {
		s("Downloading")
		p(0.5)
		return nil
	})

	m.runTask()()

	if got := <-m.statusCh; got != "Downloading" {
		t.Errorf("status = %q", got)
	}
	if got := <-m.progressCh; got != 0.5 {
		t.Errorf("progress = %f", got)
	}
	if err := <-m.doneCh; err != nil {
		t.Errorf("done = %v", err)
	}
}
