package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neurlang/trainkit/components"
)

func (a *app) componentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "components",
		Short: "List the registered component names per slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv := components.Default().Inventory()
			kinds := make([]string, 0, len(inv))
			for k := range inv {
				kinds = append(kinds, k)
			}
			sort.Strings(kinds)
			for _, k := range kinds {
				fmt.Fprintf(cmd.OutOrStdout(), "%-13s %s\n", k, strings.Join(inv[k], ", "))
			}
			return nil
		},
	}
}
