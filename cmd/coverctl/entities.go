package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/coverdesk/internal/core"
)

func newEntitiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List the entity tables the dashboard knows about",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, g := range core.Groups() {
				for _, e := range core.ByGroup(g) {
					imp := "no"
					if e.Importable() {
						imp = "yes"
					}
					rows = append(rows, []string{e.Key, e.Label, g, imp})
				}
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), renderGrid([]string{"Key", "Label", "Group", "Import"}, rows, nil))
			return err
		},
	}
}
