package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/kerbaras/novelshelf/pkg/api"
	"github.com/kerbaras/novelshelf/pkg/app/components"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/services"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Start and monitor translation and scraping jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list [kind]",
	Short: "List jobs of one kind",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		jobs, err := ctrl.Jobs.List(cmd.Context(), kind)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No %s jobs\n", kind)
			return nil
		}
		rows := make([][]string, 0, len(jobs))
		for _, j := range jobs {
			novel := j.NovelTitle
			if novel == "" {
				novel = j.NovelID
			}
			rows = append(rows, []string{
				j.ID,
				truncateString(novel, 36),
				string(j.Status),
				fmt.Sprintf("%d/%d", j.Processed, j.Total),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Novel", "Status", "Progress"}, rows))
		return nil
	},
}

var jobsTranslateCmd = &cobra.Command{
	Use:   "translate [novel-id]",
	Short: "Translate a novel's chapters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to := chapterRange(cmd)
		model, _ := cmd.Flags().GetString("model")
		noGlossary, _ := cmd.Flags().GetBool("no-glossary")
		job, err := ctrl.Jobs.StartTranslation(cmd.Context(), api.TranslationRequest{
			NovelID:     args[0],
			FromChapter: from,
			ToChapter:   to,
			Model:       model,
			UseGlossary: !noGlossary,
		})
		if err != nil {
			return err
		}
		return started(cmd, job)
	},
}

var jobsTitlesCmd = &cobra.Command{
	Use:   "titles [novel-id]",
	Short: "Extract chapter titles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to := chapterRange(cmd)
		job, err := ctrl.Jobs.StartTitleExtraction(cmd.Context(), api.TitleRequest{
			NovelID:     args[0],
			FromChapter: from,
			ToChapter:   to,
		})
		if err != nil {
			return err
		}
		return started(cmd, job)
	},
}

var jobsScrapeCmd = &cobra.Command{
	Use:   "scrape [source-url]",
	Short: "Scrape a novel from its source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to := chapterRange(cmd)
		novelID, _ := cmd.Flags().GetString("novel")
		job, err := ctrl.Jobs.StartScrape(cmd.Context(), args[0], novelID, from, to)
		if err != nil {
			return err
		}
		return started(cmd, job)
	},
}

var jobsImportCmd = &cobra.Command{
	Use:   "import [source-url...]",
	Short: "Scrape many sources as one bulk job",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := ctrl.Jobs.StartImport(cmd.Context(), args)
		if err != nil {
			return err
		}
		return started(cmd, job)
	},
}

var jobsStatusCmd = &cobra.Command{
	Use:   "status [kind] [job-id]",
	Short: "Show a job once",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		job, err := ctrl.Jobs.Status(cmd.Context(), kind, args[1])
		if err != nil {
			return err
		}
		printJob(cmd.OutOrStdout(), job)
		for _, l := range job.Logs {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s [%s] %s\n", l.Time.Local().Format("15:04:05"), l.Level, l.Message)
		}
		return nil
	},
}

var jobsWatchCmd = &cobra.Command{
	Use:   "watch [kind] [job-id]",
	Short: "Follow a job until it finishes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		return follow(cmd.Context(), cmd.OutOrStdout(), kind, args[1])
	},
}

// controlCmd builds pause, resume and delete.
func controlCmd(use, short, done string, call func(*services.Jobs, context.Context, data.JobKind, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [kind] [job-id]",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			var failed error
			ctrl.Jobs.OnError(func(err error) bool {
				failed = err
				return ctrl.Session.HandleError(err)
			})
			if err := call(ctrl.Jobs, cmd.Context(), kind, args[1]); err != nil {
				return err
			}
			ctrl.Jobs.Wait()
			if failed != nil {
				return failed
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s %s\n", args[1], done)
			return nil
		},
	}
}

func chapterRange(cmd *cobra.Command) (int, int) {
	from, _ := cmd.Flags().GetInt("from")
	to, _ := cmd.Flags().GetInt("to")
	return from, to
}

// started reports a new job and follows it when --watch is set.
func started(cmd *cobra.Command, job *data.Job) error {
	fmt.Fprintf(cmd.OutOrStdout(), "🚀 Started %s job %s\n", job.Kind, job.ID)
	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		return follow(cmd.Context(), cmd.OutOrStdout(), job.Kind, job.ID)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "💡 Follow it with: novelshelf jobs watch %s %s\n", job.Kind, job.ID)
	return nil
}

func follow(ctx context.Context, w io.Writer, kind data.JobKind, id string) error {
	var lastLogs int
	job, err := ctrl.Jobs.Follow(ctx, kind, id, func(job data.Job) {
		fmt.Fprintf(w, "%s %s\n", components.SimpleProgress(job.Processed, job.Total, 30), job.Status)
		// Logs are replaced wholesale; print only lines not seen yet.
		if len(job.Logs) < lastLogs {
			lastLogs = 0
		}
		for _, l := range job.Logs[lastLogs:] {
			fmt.Fprintf(w, "  [%s] %s\n", l.Level, l.Message)
		}
		lastLogs = len(job.Logs)
	})
	if err != nil {
		return err
	}
	printJob(w, &job)
	if job.Status == data.JobFailed {
		return fmt.Errorf("job %s failed", job.ID)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{jobsTranslateCmd, jobsTitlesCmd, jobsScrapeCmd} {
		c.Flags().Int("from", 0, "First chapter")
		c.Flags().Int("to", 0, "Last chapter")
	}
	for _, c := range []*cobra.Command{jobsTranslateCmd, jobsTitlesCmd, jobsScrapeCmd, jobsImportCmd} {
		c.Flags().BoolP("watch", "w", false, "Follow the job until it finishes")
	}
	jobsTranslateCmd.Flags().String("model", "", "Translation model")
	jobsTranslateCmd.Flags().Bool("no-glossary", false, "Ignore the novel's glossary")
	jobsScrapeCmd.Flags().String("novel", "", "Existing novel to scrape into")

	jobsCmd.AddCommand(
		jobsListCmd,
		jobsTranslateCmd,
		jobsTitlesCmd,
		jobsScrapeCmd,
		jobsImportCmd,
		jobsStatusCmd,
		jobsWatchCmd,
		controlCmd("pause", "Pause a job", "paused", (*services.Jobs).Pause),
		controlCmd("resume", "Resume a job", "resumed", (*services.Jobs).Resume),
		controlCmd("delete", "Delete a job", "deleted", (*services.Jobs).Delete),
	)
}
