package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lukman83/wbops/internal/jobs"
	"github.com/lukman83/wbops/internal/ui"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Export and process assembly tasks",
}

var ordersExportCmd = &cobra.Command{
	Use:   "export [cabinet...]",
	Short: "Export new orders of one or more cabinets (\"all\" for every cabinet)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runOrdersExport,
}

var ordersSupplyIDsCmd = &cobra.Command{
	Use:   "supply-ids [cabinet] [supplyId...]",
	Short: "Export order ids of not-purchased supplies",
	Long:  "Export the order ids of the given supplies. Without supply ids, the cabinet's open not-purchased supplies are used.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runOrdersSupplyIDs,
}

var ordersMergeCmd = &cobra.Command{
	Use:   "merge-base [cabinet...]",
	Short: "Join exported orders with the product base",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runOrdersMerge,
}

var ordersExpirationCmd = &cobra.Command{
	Use:   "set-expiration [cabinet]",
	Short: "Send shelf-life dates from the picking workbooks",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrdersExpiration,
}

var ordersReturnCmd = &cobra.Command{
	Use:   "return-uncollected [cabinet] [supplyId]",
	Short: "Attach orders marked as not collected to a supply",
	Args:  cobra.ExactArgs(2),
	RunE:  runOrdersReturn,
}

func init() {
	ordersExpirationCmd.Flags().String("prefix", "", "Storage prefix of the workbooks (default from tables)")
	ordersReturnCmd.Flags().String("prefix", "", "Storage prefix of the picking lists (default from tables)")
	ordersCmd.AddCommand(ordersExportCmd, ordersSupplyIDsCmd, ordersMergeCmd, ordersExpirationCmd, ordersReturnCmd)
	rootCmd.AddCommand(ordersCmd)
}

// expandCabinets turns "all" into every configured cabinet.
func expandCabinets(r *jobs.Runner, args []string) []string {
	if len(args) == 1 && strings.EqualFold(args[0], "all") {
		return r.Cabinets.List()
	}
	return args
}

func runOrdersExport(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	spin := ui.NewSpinner()
	defer spin.Stop()
	ctx := ui.WithProgress(cmd.Context(), spin.Update)
	for _, cab := range expandCabinets(r, args) {
		spin.Start(fmt.Sprintf("Fetching new orders of %s...", cab))
		out, err := r.ExportNewOrders(ctx, cab)
		spin.Stop()
		if err != nil {
			return fmt.Errorf("cabinet %s: %w", cab, err)
		}
		if out.Key == "" {
			fmt.Fprintf(os.Stdout, "%s: no new orders\n", cab)
			continue
		}
		fmt.Fprintf(os.Stdout, "%s: %d orders -> %s\n", cab, out.Rows, r.Store.Describe(out.Key))
	}
	return nil
}

func runOrdersSupplyIDs(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	out, err := r.ExportSupplyOrders(cmd.Context(), args[0], args[1:])
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%d order ids -> %s\n", out.Rows, r.Store.Describe(out.Key))
	return nil
}

func runOrdersMerge(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	for _, cab := range expandCabinets(r, args) {
		out, err := r.MergeWithBase(cmd.Context(), cab)
		if err != nil {
			return fmt.Errorf("cabinet %s: %w", cab, err)
		}
		fmt.Fprintf(os.Stdout, "%s: %d rows -> %s\n", cab, out.Rows, r.Store.Describe(out.Key))
	}
	return nil
}

func runOrdersExpiration(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	prefix, _ := cmd.Flags().GetString("prefix")
	rep, err := r.SetExpirations(cmd.Context(), args[0], prefix)
	fmt.Fprintf(os.Stdout, "set %d, rejected %d, failed %d\n", rep.Set, rep.Rejected, rep.Failed)
	for _, e := range rep.Errors {
		fmt.Fprintf(os.Stdout, "  %s\n", e)
	}
	return err
}

func runOrdersReturn(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	prefix, _ := cmd.Flags().GetString("prefix")
	res, err := r.ReturnUncollected(cmd.Context(), args[0], prefix, args[1])
	printAttachResult(res)
	return err
}
