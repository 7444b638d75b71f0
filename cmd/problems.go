package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/blackboxopt/internal/problems"
)

var problemsCmd = &cobra.Command{
	Use:   "problems",
	Short: "List the built-in example problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tRANGE\tOPTIMUM\tDESCRIPTION")
		for _, name := range problems.Names() {
			def, _ := problems.Get(name)
			fmt.Fprintf(w, "%s\t[%g, %g]\t%g\t%s\n",
				def.Name, def.Range.Min, def.Range.Max, def.Optimum, def.Description)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(problemsCmd)
}
