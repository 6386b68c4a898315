package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var stocksCmd = &cobra.Command{
	Use:   "stocks",
	Short: "Manage warehouse stocks",
}

var stocksUpdateCmd = &cobra.Command{
	Use:   "update [cabinet] [article] [warehouse] [amount]",
	Short: "Set the stock of every barcode of an article",
	Args:  cobra.ExactArgs(4),
	RunE:  runStocksUpdate,
}

func init() {
	stocksCmd.AddCommand(stocksUpdateCmd)
	rootCmd.AddCommand(stocksCmd)
}

func runStocksUpdate(cmd *cobra.Command, args []string) error {
	amount, err := strconv.Atoi(strings.TrimSpace(args[3]))
	if err != nil {
		return fmt.Errorf("amount must be an integer: %q", args[3])
	}
	r, err := newRunner()
	if err != nil {
		return err
	}
	rep, err := r.UpdateStocks(cmd.Context(), args[0], args[1], args[2], amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Warehouse %s, amount %d\n", rep.WarehouseID, rep.Amount)
	fmt.Fprintf(os.Stdout, "  updated: %d\n", len(rep.Updated))
	if len(rep.Failed) > 0 {
		fmt.Fprintf(os.Stdout, "  failed:  %d (%s)\n", len(rep.Failed), strings.Join(rep.Failed, ", "))
	}
	return nil
}
