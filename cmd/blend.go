package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/landscope/internal/palette"
)

var blendCmd = &cobra.Command{
	Use:     "blend <from> <to> <t>",
	Short:   "Linearly blend two hex colors",
	Example: `  landscope blend '#ef4444' '#10b981' 0.5`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return eris.Wrapf(err, "blend: parse t %q", args[2])
		}
		color, err := palette.Blend(args[0], args[1], t)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), color)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(blendCmd)
}
