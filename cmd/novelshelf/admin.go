package cmd

import (
	"fmt"

	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts (admin)",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		pages, _ := cmd.Flags().GetInt("pages")

		pager := ctrl.Admin.Users()
		if err := pager.SetSearch(cmd.Context(), search); err != nil {
			return err
		}
		for i := 1; i < pages && pager.HasMore(); i++ {
			if err := pager.NextPage(cmd.Context()); err != nil {
				return err
			}
		}

		users := pager.Items()
		if len(users) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No users")
			return nil
		}
		rows := make([][]string, 0, len(users))
		for _, u := range users {
			rows = append(rows, []string{u.ID, truncateString(u.Name, 24), u.Email, string(u.Role)})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Email", "Role"}, rows))
		return nil
	},
}

var usersRoleCmd = &cobra.Command{
	Use:   "role [user-id] [user|contributor|admin]",
	Short: "Change an account's role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := ctrl.Admin.SetRole(cmd.Context(), args[0], data.Role(args[1]))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is now %s\n", user.Name, user.Role)
		return nil
	},
}

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Manage a novel's translation glossary (admin)",
}

var glossaryListCmd = &cobra.Command{
	Use:   "list [novel-id]",
	Short: "List glossary terms",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		terms, err := ctrl.Admin.Glossary(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(terms) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No terms")
			return nil
		}
		rows := make([][]string, 0, len(terms))
		for _, t := range terms {
			rows = append(rows, []string{t.ID, t.Term, t.Translation, truncateString(t.Notes, 30)})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Term", "Translation", "Notes"}, rows))
		return nil
	},
}

var glossarySetCmd = &cobra.Command{
	Use:   "set [novel-id] [term] [translation]",
	Short: "Add or update a term",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		notes, _ := cmd.Flags().GetString("notes")
		term, err := ctrl.Admin.UpsertTerm(cmd.Context(), data.GlossaryTerm{
			ID:          id,
			NovelID:     args[0],
			Term:        args[1],
			Translation: args[2],
			Notes:       notes,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s → %s\n", term.Term, term.Translation)
		return nil
	},
}

var glossaryDeleteCmd = &cobra.Command{
	Use:   "delete [novel-id] [term-id]",
	Short: "Delete a term",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ctrl.Admin.DeleteTerm(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "🗑  Term deleted")
		return nil
	},
}

func init() {
	usersListCmd.Flags().StringP("search", "s", "", "Search name or email")
	usersListCmd.Flags().IntP("pages", "n", 1, "Number of pages to fetch")
	usersCmd.AddCommand(usersListCmd, usersRoleCmd)

	glossarySetCmd.Flags().String("id", "", "Existing term ID to update")
	glossarySetCmd.Flags().String("notes", "", "Translator notes")
	glossaryCmd.AddCommand(glossaryListCmd, glossarySetCmd, glossaryDeleteCmd)
}
