package components

import (
	"fmt"
	"strings"

	"github.com/kerbaras/novelshelf/pkg/app/styles"
	"github.com/kerbaras/novelshelf/pkg/data"
)

// JobProgress renders the state of one server-side job. The job is replaced
// wholesale on every poll.
type JobProgress struct {
	job      *data.Job
	width    int
	LogLines int
}

func NewJobProgress(width int) *JobProgress {
	return &JobProgress{width: width, LogLines: 10}
}

func (p *JobProgress) Update(job data.Job) {
	p.job = &job
}

func (p *JobProgress) SetWidth(width int) {
	p.width = width
}

func (p *JobProgress) Job() *data.Job {
	return p.job
}

func (p *JobProgress) HasActive() bool {
	return p.job != nil && !p.job.Status.Terminal()
}

func (p *JobProgress) View() string {
	if p.job == nil {
		return styles.MutedStyle.Render("Waiting for status...")
	}
	job := p.job

	var b strings.Builder
	title := fmt.Sprintf("%s job %s", job.Kind, job.ID)
	if job.NovelTitle != "" {
		title = fmt.Sprintf("%s • %s", title, job.NovelTitle)
	}
	b.WriteString(styles.SubtitleStyle.Render(title))
	b.WriteString("\n\n")

	statusText := string(job.Status)
	if job.Total > 0 {
		statusText = fmt.Sprintf("%s (%d/%d - %.0f%%)", job.Status, job.Processed, job.Total, job.Percent())
		b.WriteString(renderProgressBar(job.Processed, job.Total, p.width-4))
		b.WriteString("\n")
	}
	b.WriteString(styles.StatusStyle(string(job.Status)).Render(statusText))
	b.WriteString("\n")

	if job.Failed > 0 {
		b.WriteString(styles.StatusError.Render(fmt.Sprintf("%d failed", job.Failed)))
		b.WriteString("\n")
	}
	if job.Error != "" {
		b.WriteString(styles.StatusError.Render(fmt.Sprintf("Error: %s", job.Error)))
		b.WriteString("\n")
	}

	if logs := p.tail(); len(logs) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.MutedStyle.Render("Logs"))
		b.WriteString("\n")
		for _, l := range logs {
			b.WriteString(renderLog(l))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (p *JobProgress) tail() []data.JobLog {
	logs := p.job.Logs
	if p.LogLines > 0 && len(logs) > p.LogLines {
		logs = logs[len(logs)-p.LogLines:]
	}
	return logs
}

func renderLog(l data.JobLog) string {
	stamp := ""
	if !l.Time.IsZero() {
		stamp = l.Time.Format("15:04:05") + " "
	}
	line := fmt.Sprintf("%s%s", stamp, l.Message)
	switch strings.ToLower(l.Level) {
	case "error":
		return styles.StatusError.Render(line)
	case "warn", "warning":
		return styles.StatusPaused.Render(line)
	default:
		return styles.TextStyle.Render(line)
	}
}

func renderProgressBar(current, total, width int) string {
	if total == 0 || width <= 0 {
		return ""
	}

	filled := int(float64(current) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	return styles.ProgressBarStyle.Render(strings.Repeat("█", filled)) +
		styles.ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// SimpleProgress renders a simple progress bar
func SimpleProgress(current, total, width int) string {
	return renderProgressBar(current, total, width)
}
