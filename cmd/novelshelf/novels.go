package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kerbaras/novelshelf/pkg/api"
	"github.com/kerbaras/novelshelf/pkg/content"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/listing"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List novels in the catalogue",
	Long:  "Display novels in a formatted table, filtered and sorted like the library screen",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var q listing.Query
		q.Search, _ = cmd.Flags().GetString("search")
		q.Status, _ = cmd.Flags().GetString("status")
		q.Category, _ = cmd.Flags().GetString("category")
		q.Sort, _ = cmd.Flags().GetString("sort")
		pages, _ := cmd.Flags().GetInt("pages")

		pager := ctrl.Library.Browse()
		if err := pager.SetQuery(cmd.Context(), q); err != nil {
			return err
		}
		for i := 1; i < pages && pager.HasMore(); i++ {
			if err := pager.NextPage(cmd.Context()); err != nil {
				return err
			}
		}

		novels := pager.Items()
		if len(novels) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "📚 No novels match.")
			return nil
		}

		rows := make([][]string, 0, len(novels))
		for _, n := range novels {
			rows = append(rows, []string{
				n.ID,
				truncateString(n.Title, 40),
				truncateString(n.Author, 20),
				string(n.Status),
				strconv.Itoa(n.ChapterCount),
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n📚 Library (%d novels)\n\n", len(novels))
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Title", "Author", "Status", "Chapters"}, rows))
		if pager.HasMore() {
			fmt.Fprintf(cmd.OutOrStdout(), "💡 More results: --pages %d\n", pager.Query().Page+1)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [novel-id]",
	Short: "Show a novel and a page of its chapters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")

		novel, err := ctrl.Library.Novel(cmd.Context(), args[0])
		if err != nil && !api.IsNetwork(err) {
			return err
		}
		out := cmd.OutOrStdout()
		if novel != nil {
			fmt.Fprintf(out, "📖 %s\n", novel.Title)
			if novel.Author != "" {
				fmt.Fprintf(out, "by %s\n", novel.Author)
			}
			fmt.Fprintf(out, "%s • %d chapters", novel.Status, novel.ChapterCount)
			if len(novel.Tags) > 0 {
				fmt.Fprintf(out, " • %s", strings.Join(novel.Tags, ", "))
			}
			fmt.Fprintln(out)
			if novel.Description != "" {
				fmt.Fprintf(out, "\n%s\n", content.Text(novel.Description))
			}
		}

		chapters, cached, err := ctrl.Library.Chapters(cmd.Context(), args[0], page)
		if err != nil {
			return err
		}
		if cached {
			fmt.Fprintln(out, "\n⚠️  Offline: showing saved chapters")
		}
		rows := make([][]string, 0, len(chapters))
		for _, c := range chapters {
			rows = append(rows, []string{strconv.Itoa(c.Number), truncateString(c.Title, 60)})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable([]string{"#", "Title"}, rows))
		return nil
	},
}

var readCmd = &cobra.Command{
	Use:   "read [novel-id] [chapter]",
	Short: "Print a chapter as plain text",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := strconv.Atoi(args[1])
		if err != nil || number < 1 {
			return fmt.Errorf("invalid chapter number %q", args[1])
		}
		chapter, cached, err := ctrl.Library.Chapter(cmd.Context(), args[0], number)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		title := fmt.Sprintf("Chapter %d", chapter.Number)
		if chapter.Title != "" {
			title += ": " + chapter.Title
		}
		fmt.Fprintf(out, "%s\n\n", title)
		fmt.Fprintln(out, strings.Join(content.Paragraphs(chapter.Content), "\n\n"))
		if cached {
			fmt.Fprintln(cmd.ErrOrStderr(), "\n(offline copy)")
		}
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit [novel-id]",
	Short: "Change a novel's metadata (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch api.NovelPatch
		flags := cmd.Flags()
		if flags.Changed("title") {
			v, _ := flags.GetString("title")
			patch.Title = &v
		}
		if flags.Changed("description") {
			v, _ := flags.GetString("description")
			patch.Description = &v
		}
		if flags.Changed("category") {
			v, _ := flags.GetString("category")
			patch.Category = &v
		}
		if flags.Changed("status") {
			v, _ := flags.GetString("status")
			status := data.NovelStatus(v)
			switch status {
			case data.NovelOngoing, data.NovelCompleted, data.NovelStopped:
			default:
				return fmt.Errorf("invalid status %q (ongoing, completed, stopped)", v)
			}
			patch.Status = &status
		}
		if flags.Changed("tags") {
			patch.Tags, _ = flags.GetStringSlice("tags")
		}

		novel, err := ctrl.Library.Novel(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var failed error
		ctrl.Library.OnError(func(err error) bool {
			failed = err
			return ctrl.Session.HandleError(err)
		})
		updated := ctrl.Library.EditNovel(cmd.Context(), novel, patch)
		ctrl.Library.Wait()
		if failed != nil {
			return failed
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Updated '%s' (%s)\n", updated.Title, updated.Status)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [novel-id]",
	Short: "Export every chapter of a novel to EPUB",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), "📥 Collecting chapters...")
		path, err := ctrl.Export(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📖 EPUB created: %s\n", path)
		return nil
	},
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache [novel-id]",
	Short: "Remove saved offline chapters of a novel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ctrl.ClearCache(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "🧹 Offline copies removed")
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("search", "s", "", "Search title and author")
	listCmd.Flags().String("status", "", "Filter by status: ongoing, completed, stopped")
	listCmd.Flags().StringP("category", "c", "", "Filter by category")
	listCmd.Flags().StringP("sort", "o", "", "Sort: latest, popular, title, chapters")
	listCmd.Flags().IntP("pages", "n", 1, "Number of pages to fetch")

	showCmd.Flags().IntP("page", "p", 1, "Chapter page")

	editCmd.Flags().String("title", "", "New title")
	editCmd.Flags().String("description", "", "New description")
	editCmd.Flags().String("category", "", "New category")
	editCmd.Flags().String("status", "", "New status: ongoing, completed, stopped")
	editCmd.Flags().StringSlice("tags", nil, "Replace tags (comma separated)")
}
