package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/kerbaras/novelshelf/pkg/app/styles"
	"github.com/kerbaras/novelshelf/pkg/data"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(styles.Secondary).Bold(true).Align(lipgloss.Center)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
	for _, r := range rows {
		t.Row(r...)
	}
	return t.String()
}

func truncateString(s string, max int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= max {
		return string(r)
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// parseKind accepts a job kind as typed on the command line.
func parseKind(s string) (data.JobKind, error) {
	switch k := data.JobKind(strings.ToLower(s)); k {
	case data.JobScrape, data.JobImport, data.JobTranslate, data.JobTitles, data.JobWatchlist:
		return k, nil
	}
	return "", fmt.Errorf("unknown job kind %q (scrape, import, translate, titles, watchlist)", s)
}

// prompt reads one line, for secrets left off the command line. It reads a
// byte at a time so consecutive prompts share piped input.
func prompt(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	var b strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				break
			}
			b.WriteByte(buf[0])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimRight(b.String(), "\r"), nil
}

func printJob(w io.Writer, job *data.Job) {
	fmt.Fprintf(w, "%s job %s: %s", job.Kind, job.ID, styles.StatusStyle(string(job.Status)).Render(string(job.Status)))
	if job.Total > 0 {
		fmt.Fprintf(w, " (%d/%d - %.0f%%)", job.Processed, job.Total, job.Percent())
	}
	if job.Failed > 0 {
		fmt.Fprintf(w, ", %d failed", job.Failed)
	}
	fmt.Fprintln(w)
	if job.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", job.Error)
	}
}
