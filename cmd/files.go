package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var highlightCmd = &cobra.Command{
	Use:   "highlight [key...]",
	Short: "Colour workbook rows by order age",
	Long:  "Colour rows of the given workbooks by the age of the date column. Without keys, the configured list or every routed workbook is used.",
	RunE:  runHighlight,
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete every workbook directly under a prefix",
	Args:  cobra.NoArgs,
	RunE:  runCleanup,
}

func init() {
	cleanupCmd.Flags().String("prefix", "", "Storage prefix to clean (default from tables)")
	rootCmd.AddCommand(highlightCmd, cleanupCmd)
}

func runHighlight(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	outs, err := r.Highlight(cmd.Context(), args)
	printOutputs(outs)
	return err
}

func runCleanup(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	prefix, _ := cmd.Flags().GetString("prefix")
	n, err := r.Cleanup(cmd.Context(), prefix)
	fmt.Fprintf(os.Stdout, "Deleted %d files\n", n)
	return err
}
