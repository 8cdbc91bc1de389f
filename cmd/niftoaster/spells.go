package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nif-optimizer/internal/spells"
)

func newSpellsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spells",
		Short: "List the available spells",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range spells.Names() {
				u, err := spells.Lookup(name, spells.DefaultSettings())
				if err != nil {
					return err
				}
				mode := "modifies"
				if u.ReadOnly() {
					mode = "read-only"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %s\n", name, mode)
			}
			return nil
		},
	}
}
