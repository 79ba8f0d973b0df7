package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/psalmlegal/psalm"
	"github.com/psalmlegal/psalm/markdown"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	idStyle    = lipgloss.NewStyle().Faint(true)
	roleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored chat sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		sessions := a.store.Sessions()
		if len(sessions) == 0 {
			fmt.Println("No sessions.")
			return nil
		}

		current := a.store.CurrentID()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tMESSAGES\tUPDATED")
		for _, s := range sessions {
			marker := ""
			if s.ID == current {
				marker = " *"
			}
			fmt.Fprintf(w, "%s\t%s%s\t%d\t%s\n",
				idStyle.Render(s.ID),
				titleStyle.Render(s.Title), marker,
				len(s.Messages),
				s.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print a session transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		sess, ok := a.store.Get(args[0])
		if !ok {
			return psalm.ErrSessionNotFound
		}

		fmt.Println(titleStyle.Render(sess.Title))
		if sess.Jurisdiction != "" {
			fmt.Printf("Jurisdiction: %s\n", sess.Jurisdiction)
		}
		fmt.Println()
		theme := psalm.DefaultTheme()
		for _, m := range sess.Messages {
			fmt.Println(roleStyle.Render(string(m.Role) + ":"))
			switch m.Role {
			case psalm.RoleAssistant:
				fmt.Println(markdown.Render(m.Content, 80, theme))
			default:
				fmt.Println(m.Content)
			}
			fmt.Println()
		}
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		return a.store.DeleteSession(args[0])
	},
}

var sessionsDuplicateCmd = &cobra.Command{
	Use:   "duplicate <session-id>",
	Short: "Copy a session into a new one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		id, err := a.store.DuplicateSession(args[0])
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		a.store.ClearAll()
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDeleteCmd, sessionsDuplicateCmd, sessionsClearCmd)
	rootCmd.AddCommand(sessionsCmd)
}
