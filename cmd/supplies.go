package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lukman83/wbops/internal/ui"
	"github.com/lukman83/wbops/internal/wb"
)

var suppliesCmd = &cobra.Command{
	Use:   "supplies",
	Short: "List and manage supplies",
}

var suppliesListCmd = &cobra.Command{
	Use:   "list [cabinet]",
	Short: "List active supplies, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuppliesList,
}

var suppliesExportCmd = &cobra.Command{
	Use:   "export [cabinet...]",
	Short: "Export active supplies to a workbook (\"all\" for every cabinet)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSuppliesExport,
}

var suppliesCreateCmd = &cobra.Command{
	Use:   "create [cabinet] [name]",
	Short: "Create a supply (default name: not-purchased prefix and today's date)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSuppliesCreate,
}

var suppliesDeleteCmd = &cobra.Command{
	Use:   "delete [cabinet] [supplyId]",
	Short: "Delete an empty supply",
	Args:  cobra.ExactArgs(2),
	RunE:  runSuppliesDelete,
}

var suppliesDeliverCmd = &cobra.Command{
	Use:   "deliver [cabinet] [supplyId]",
	Short: "Hand a supply over to delivery",
	Args:  cobra.ExactArgs(2),
	RunE:  runSuppliesDeliver,
}

var suppliesQRCmd = &cobra.Command{
	Use:   "qr [cabinet] [supplyId]",
	Short: "Download the supply sticker",
	Args:  cobra.ExactArgs(2),
	RunE:  runSuppliesQR,
}

var suppliesAttachBoughtCmd = &cobra.Command{
	Use:   "attach-bought [cabinet]",
	Short: "Create a dated supply with the orders marked as purchased",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuppliesAttachBought,
}

func init() {
	suppliesListCmd.Flags().String("format", "table", "Output format: json, table")
	suppliesQRCmd.Flags().String("type", "png", "Sticker format: "+strings.Join(wb.BarcodeTypes, ", "))
	suppliesCmd.AddCommand(suppliesListCmd, suppliesExportCmd, suppliesCreateCmd, suppliesDeleteCmd,
		suppliesDeliverCmd, suppliesQRCmd, suppliesAttachBoughtCmd)
	rootCmd.AddCommand(suppliesCmd)
}

func runSuppliesList(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")

	spin := ui.NewSpinner()
	spin.Start(fmt.Sprintf("Listing supplies of %s...", args[0]))
	ctx := ui.WithProgress(cmd.Context(), spin.Update)
	supplies, err := r.ListActiveSupplies(ctx, args[0])
	spin.Stop()
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return printJSON(supplies)
	default:
		printSuppliesTable(supplies)
	}
	return nil
}

func runSuppliesExport(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	spin := ui.NewSpinner()
	defer spin.Stop()
	ctx := ui.WithProgress(cmd.Context(), spin.Update)
	for _, cab := range expandCabinets(r, args) {
		spin.Start(fmt.Sprintf("Listing supplies of %s...", cab))
		out, err := r.ExportActiveSupplies(ctx, cab)
		spin.Stop()
		if err != nil {
			return fmt.Errorf("cabinet %s: %w", cab, err)
		}
		fmt.Fprintf(os.Stdout, "%s: %d active supplies -> %s\n", cab, out.Rows, r.Store.Describe(out.Key))
	}
	return nil
}

func runSuppliesCreate(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	name := ""
	if len(args) > 1 {
		name = args[1]
	}
	id, err := r.CreateSupply(cmd.Context(), args[0], name)
	if err != nil {
		return err
	}
	// Only the id, so scripts can capture it.
	fmt.Fprintln(os.Stdout, id)
	return nil
}

func runSuppliesDelete(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	if err := r.DeleteSupply(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "OK")
	return nil
}

func runSuppliesDeliver(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	if err := r.DeliverSupply(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "OK")
	return nil
}

func runSuppliesQR(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	kind, _ := cmd.Flags().GetString("type")
	key, err := r.SaveSupplyBarcode(cmd.Context(), args[0], args[1], strings.ToLower(kind))
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, r.Store.Describe(key))
	return nil
}

func runSuppliesAttachBought(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	res, err := r.CreateBoughtSupply(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printAttachResult(res)
	return nil
}
