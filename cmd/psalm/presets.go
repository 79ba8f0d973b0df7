package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/psalmlegal/psalm"
	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List built-in presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tLABEL\tCATEGORY\tDESCRIPTION")
		for _, p := range psalm.BuiltinPresets {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Label, p.Category, p.Description)
		}
		return w.Flush()
	},
}

var jurisdictionsCmd = &cobra.Command{
	Use:   "jurisdictions",
	Short: "List known jurisdictions",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tNAME")
		for _, j := range psalm.Jurisdictions {
			fmt.Fprintf(w, "%s\t%s\n", j.Code, j.Name)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd, jurisdictionsCmd)
}
