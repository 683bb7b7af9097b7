package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"rustdex/internal/pipeline"
)

func feed(m *progressModel, evs ...pipeline.Event) {
	for _, ev := range evs {
		m.Update(eventMsg(ev))
	}
}

func TestProgressModel_FileEvents(t *testing.T) {
	m := newProgressModel("index", []string{"main.rs"}, nil)
	if got := m.percent(); got != 0 {
		t.Fatalf("initial percent = %v", got)
	}

	feed(m,
		pipeline.Event{File: "main.rs", Stage: pipeline.StageParse, Status: pipeline.StatusWorking},
		pipeline.Event{File: "a.rs", Stage: pipeline.StageParse, Status: pipeline.StatusDone},
	)
	if len(m.items) != 2 || m.items[1].path != "a.rs" {
		t.Fatalf("discovered file not tracked: %+v", m.items)
	}
	if m.items[0].status != "parsing" || m.items[1].status != "parsed" {
		t.Errorf("statuses = %q, %q", m.items[0].status, m.items[1].status)
	}
	if got, want := m.percent(), (0.3+0.5)/2; got != want {
		t.Errorf("percent = %v, want %v", got, want)
	}
}

func TestProgressModel_CrateStages(t *testing.T) {
	m := newProgressModel("index", []string{"main.rs", "bad.rs"}, nil)
	feed(m,
		pipeline.Event{File: "main.rs", Stage: pipeline.StageParse, Status: pipeline.StatusDone},
		pipeline.Event{File: "bad.rs", Stage: pipeline.StageLoad, Status: pipeline.StatusError, Err: errors.New("boom")},
		pipeline.Event{Stage: pipeline.StagePass1, Status: pipeline.StatusWorking},
	)
	if m.stageLabel != "declaring" {
		t.Errorf("stageLabel = %q", m.stageLabel)
	}
	feed(m, pipeline.Event{Stage: pipeline.StagePass1, Status: pipeline.StatusDone})
	if got := m.percent(); got != (0.75+1.0)/2 {
		t.Errorf("percent after pass1 = %v", got)
	}
	feed(m, pipeline.Event{Stage: pipeline.StagePass2, Status: pipeline.StatusDone})
	if m.items[0].status != "done" || m.items[1].status != "error" {
		t.Errorf("final statuses = %+v", m.items)
	}
	if got := m.percent(); got != 1 {
		t.Errorf("final percent = %v", got)
	}
}

func TestProgressModel_View(t *testing.T) {
	long := strings.Repeat("dir/", 30) + "main.rs"
	m := newProgressModel("index", []string{long}, nil)
	m.Update(tea.WindowSizeMsg{Width: 40})
	view := m.View()
	if !strings.Contains(view, "index") || !strings.Contains(view, "queued") {
		t.Errorf("view misses title or status:\n%s", view)
	}
	if !strings.Contains(view, "...") {
		t.Errorf("long path not truncated:\n%s", view)
	}

	_, cmd := m.Update(doneMsg{})
	if !m.done || cmd == nil {
		t.Error("doneMsg must finish the model")
	}
	if !strings.Contains(m.View(), "done: index") {
		t.Errorf("done view:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdefghij", 6, "abc..."},
		{"abcdef", 2, "ab"},
		{"файл.rs", 0, "файл.rs"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
