package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/reactions"
	"github.com/kerbaras/novelshelf/pkg/services"
	"github.com/spf13/cobra"
)

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Read and react to a novel's discussion",
}

var commentsListCmd = &cobra.Command{
	Use:   "list [novel-id]",
	Short: "Show the comment thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := ctrl.Discussion(args[0])
		if err := d.Load(cmd.Context()); err != nil {
			return err
		}
		comments := d.Thread.Comments()
		if len(comments) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "💬 No comments yet")
			return nil
		}
		printThread(cmd.OutOrStdout(), comments, "", 0)
		return nil
	},
}

var commentsPostCmd = &cobra.Command{
	Use:   "post [novel-id] [text...]",
	Short: "Post a comment or a reply",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ctrl.Session.LoggedIn() {
			return fmt.Errorf("sign in first with 'novelshelf login'")
		}
		parent, _ := cmd.Flags().GetString("reply")
		d := ctrl.Discussion(args[0])
		c, err := d.Post(cmd.Context(), strings.Join(args[1:], " "), parent)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Posted comment %s\n", c.ID)
		return nil
	},
}

// reactCmd builds like, dislike and delete: each loads the thread, applies
// the change locally and waits for the server call.
func reactCmd(use, short string, apply func(t *reactions.Thread, id string) bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [novel-id] [comment-id]",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !ctrl.Session.LoggedIn() {
				return fmt.Errorf("sign in first with 'novelshelf login'")
			}
			d := ctrl.Discussion(args[0])
			if err := d.Load(cmd.Context()); err != nil {
				return err
			}
			if !apply(d.Thread, args[1]) {
				return fmt.Errorf("comment %s not found", args[1])
			}
			d.Thread.Wait()
			printReactions(cmd.OutOrStdout(), d, args[1])
			return nil
		},
	}
}

func printReactions(w io.Writer, d *services.Discussion, id string) {
	for _, c := range d.Thread.Comments() {
		if c.ID == id {
			fmt.Fprintf(w, "✅ ▲ %d ▼ %d\n", len(c.LikedBy), len(c.DislikedBy))
			return
		}
	}
	fmt.Fprintln(w, "🗑  Removed")
}

func printThread(w io.Writer, comments []data.Comment, parentID string, depth int) {
	indent := strings.Repeat("    ", depth)
	for _, c := range reactions.Replies(comments, parentID) {
		fmt.Fprintf(w, "%s[%s] %s • %s • ▲ %d ▼ %d\n", indent, c.ID, c.AuthorName,
			c.CreatedAt.Local().Format("2006-01-02 15:04"), len(c.LikedBy), len(c.DislikedBy))
		fmt.Fprintf(w, "%s  %s\n", indent, c.Content)
		printThread(w, comments, c.ID, depth+1)
	}
}

func init() {
	commentsPostCmd.Flags().StringP("reply", "r", "", "Comment ID to reply to")

	commentsCmd.AddCommand(
		commentsListCmd,
		commentsPostCmd,
		reactCmd("like", "Toggle a like", (*reactions.Thread).Like),
		reactCmd("dislike", "Toggle a dislike", (*reactions.Thread).Dislike),
		reactCmd("delete", "Delete a comment", (*reactions.Thread).Remove),
	)
}
