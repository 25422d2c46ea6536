package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgallion1/xrefmend/internal/resolve"
	"github.com/dgallion1/xrefmend/internal/xref"
)

func kindsCmd() *cobra.Command {
	var labels string
	cmd := &cobra.Command{
		Use:   "kinds",
		Short: "List reference kinds with their prefix words and label templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var templates map[string]string
			if labels != "" {
				t, err := resolve.LoadTemplates(labels)
				if err != nil {
					return err
				}
				templates = t
			}
			r := resolve.New(templates)

			names := map[string]bool{}
			for _, k := range xref.Kinds() {
				names[k] = true
			}
			for k := range resolve.DefaultTemplates {
				names[k] = true
			}
			for k := range templates {
				names[k] = true
			}
			kinds := make([]string, 0, len(names))
			for k := range names {
				kinds = append(kinds, k)
			}
			sort.Strings(kinds)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tPREFIX\tLABEL START\tTEMPLATE")
			for _, k := range kinds {
				p, _ := xref.Lookup(k)
				start := p.ExpectedStart
				if p.HasAlt {
					if p.AltStart == "" {
						start += " (any)"
					} else {
						start += " or " + p.AltStart
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", k, p.Trailing.String(), start, r.Template(k))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&labels, "labels", "", "YAML file with label templates")
	return cmd
}
