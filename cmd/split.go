package cmd

import (
	"github.com/spf13/cobra"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split merged workbooks for buyers",
}

var splitPointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Combine merged workbooks and split them by pickup point",
	Args:  cobra.NoArgs,
	RunE:  runSplitPoints,
}

var splitGroupsCmd = &cobra.Command{
	Use:   "groups [set...]",
	Short: "Split a routed workbook by seller group (sets from tables, e.g. moscow, ekb)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSplitGroups,
}

func init() {
	splitCmd.AddCommand(splitPointsCmd, splitGroupsCmd)
	rootCmd.AddCommand(splitCmd)
}

func runSplitPoints(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	outs, err := r.SplitByPickupPoint(cmd.Context())
	printOutputs(outs)
	return err
}

func runSplitGroups(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	for _, set := range args {
		outs, err := r.SplitByGroup(cmd.Context(), set)
		printOutputs(outs)
		if err != nil {
			return err
		}
	}
	return nil
}
