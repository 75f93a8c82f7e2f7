package cmd

import (
	"fmt"
	"strconv"

	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/spf13/cobra"
)

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Manage novels the scheduler checks for new chapters",
}

var watchlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show watched novels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := ctrl.Watchlist.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "👁 Nothing is being watched")
			return nil
		}
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			checked := "never"
			if !e.LastChecked.IsZero() {
				checked = e.LastChecked.Local().Format("2006-01-02 15:04")
			}
			enabled := "on"
			if !e.Enabled {
				enabled = "off"
			}
			rows = append(rows, []string{
				e.ID,
				truncateString(e.Title, 36),
				strconv.Itoa(e.LastChapter),
				checked,
				enabled,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Title", "Last chapter", "Checked", "Enabled"}, rows))
		return nil
	},
}

var watchlistAddCmd = &cobra.Command{
	Use:   "add [source-url]",
	Short: "Watch a source for new chapters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		novelID, _ := cmd.Flags().GetString("novel")
		interval, _ := cmd.Flags().GetString("interval")
		entry, err := ctrl.Watchlist.Add(cmd.Context(), novelID, args[0], interval)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Watching %s (%s)\n", entry.SourceURL, entry.ID)
		return nil
	},
}

var watchlistRemoveCmd = &cobra.Command{
	Use:   "remove [entry-id]",
	Short: "Stop watching a source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ctrl.Watchlist.Remove(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "🗑  Removed from watchlist")
		return nil
	},
}

var watchlistCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check every watched source now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := ctrl.Watchlist.CheckNow(cmd.Context())
		if err != nil {
			return err
		}
		if job.Kind == "" {
			job.Kind = data.JobWatchlist
		}
		return started(cmd, job)
	},
}

func init() {
	watchlistAddCmd.Flags().String("novel", "", "Novel the source belongs to")
	watchlistAddCmd.Flags().String("interval", "", "Check interval, e.g. 6h")
	watchlistCheckCmd.Flags().BoolP("watch", "w", false, "Follow the check until it finishes")

	watchlistCmd.AddCommand(watchlistListCmd, watchlistAddCmd, watchlistRemoveCmd, watchlistCheckCmd)
}
