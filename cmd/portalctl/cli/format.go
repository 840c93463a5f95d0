package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fruitexport/portal/internal/format"
)

func formatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Render values the way portal pages display them",
	}
	cmd.AddCommand(
		formatNumberCmd("number", "Group digits with vi-VN separators", format.Number),
		formatNumberCmd("currency", "Render an amount in đồng", format.Currency),
		&cobra.Command{
			Use:   "date <value>",
			Short: "Render a date as d/m/yyyy",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				out := format.Date(args[0])
				if out == "" {
					return fmt.Errorf("format: %q is not a recognised date", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			},
		},
	)
	return cmd
}

func formatNumberCmd(name, short string, render func(float64) string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <value>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok := format.ParseNumber(strings.ReplaceAll(args[0], "_", ""))
			if !ok {
				return fmt.Errorf("format: %q is not a number", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), render(v))
			return nil
		},
	}
}
