package components

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kerbaras/novelshelf/pkg/data"
)

func TestNewJobProgress(t *testing.T) {
	p := NewJobProgress(80)

	if p == nil {
		t.Fatal("Expected progress to be created")
	}
	if p.width != 80 {
		t.Errorf("Expected width 80, got %d", p.width)
	}
	if p.HasActive() {
		t.Error("Expected no active job")
	}
	if !strings.Contains(p.View(), "Waiting") {
		t.Error("Expected waiting message before first update")
	}
}

func TestJobProgressReplacesState(t *testing.T) {
	p := NewJobProgress(80)

	p.Update(data.Job{ID: "j1", Kind: data.JobTranslate, Status: data.JobActive, Processed: 1, Total: 4,
		Logs: []data.JobLog{{Message: "first"}}})
	if !p.HasActive() {
		t.Error("Expected active job")
	}

	p.Update(data.Job{ID: "j1", Kind: data.JobTranslate, Status: data.JobCompleted, Processed: 4, Total: 4})
	if p.HasActive() {
		t.Error("Expected terminal job to be inactive")
	}
	if len(p.Job().Logs) != 0 {
		t.Error("Expected logs to be replaced, not merged")
	}
}

func TestJobProgressView(t *testing.T) {
	p := NewJobProgress(40)
	p.Update(data.Job{
		ID:         "j1",
		Kind:       data.JobScrape,
		Status:     data.JobActive,
		NovelTitle: "Sword Saint",
		Processed:  5,
		Total:      10,
		Failed:     2,
		Error:      "source timed out",
		Logs: []data.JobLog{
			{Time: time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC), Level: "info", Message: "fetched chapter 5"},
			{Level: "error", Message: "chapter 6 failed"},
		},
	})

	view := p.View()
	for _, want := range []string{"scrape job j1", "Sword Saint", "5/10", "50%", "2 failed", "source timed out", "10:30:00 fetched chapter 5", "chapter 6 failed", "█", "░"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}
}

func TestJobProgressTailsLogs(t *testing.T) {
	p := NewJobProgress(80)
	p.LogLines = 3

	var logs []data.JobLog
	for i := 1; i <= 10; i++ {
		logs = append(logs, data.JobLog{Message: fmt.Sprintf("line-%02d", i)})
	}
	p.Update(data.Job{ID: "j1", Status: data.JobActive, Logs: logs})

	view := p.View()
	if strings.Contains(view, "line-07") {
		t.Error("Expected old log lines to be hidden")
	}
	if !strings.Contains(view, "line-08") || !strings.Contains(view, "line-10") {
		t.Error("Expected the last three log lines")
	}
}

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
		width          int
		filled         int
	}{
		{"empty", 0, 10, 10, 0},
		{"half", 5, 10, 10, 5},
		{"full", 10, 10, 10, 10},
		{"overflow", 15, 10, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := renderProgressBar(tt.current, tt.total, tt.width)
			if got := strings.Count(bar, "█"); got != tt.filled {
				t.Errorf("Expected %d filled cells, got %d", tt.filled, got)
			}
			if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != tt.width {
				t.Errorf("Expected %d cells, got %d", tt.width, got)
			}
		})
	}

	if renderProgressBar(1, 0, 10) != "" {
		t.Error("Expected empty bar for zero total")
	}
}
