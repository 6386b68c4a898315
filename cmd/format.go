package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lukman83/wbops/internal/jobs"
	"github.com/lukman83/wbops/internal/models"
	"github.com/lukman83/wbops/internal/table"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printSuppliesTable prints supplies as aligned columns.
func printSuppliesTable(supplies []models.Supply) {
	if len(supplies) == 0 {
		fmt.Fprintln(os.Stdout, "No active supplies.")
		return
	}
	fmt.Fprintf(os.Stdout, "%-18s  %-36s  %-19s  %s\n", "ID", "NAME", "CREATED (MSK)", "CARGO")
	for _, s := range supplies {
		created := ""
		if !s.CreatedAt.IsZero() {
			created = s.CreatedAt.In(table.Moscow).Format("2006-01-02 15:04:05")
		}
		name := truncate(s.Name, 36)
		if s.NotPurchased() {
			name = truncate("* "+s.Name, 36)
		}
		fmt.Fprintf(os.Stdout, "%-18s  %-36s  %-19s  %d\n", s.ID, name, created, s.CargoType)
	}
}

func printOutputs(outs []jobs.Output) {
	if len(outs) == 0 {
		fmt.Fprintln(os.Stdout, "Nothing written.")
		return
	}
	for _, o := range outs {
		fmt.Fprintf(os.Stdout, "%6d rows  %s\n", o.Rows, o.Key)
	}
}

func printAttachResult(res models.AttachResult) {
	fmt.Fprintf(os.Stdout, "Supply %s: attached %d/%d orders\n", res.SupplyID, res.Attached, res.Requested)
	for _, f := range res.Failures {
		fmt.Fprintf(os.Stdout, "  chunk %d failed (%d): %s\n", f.Index+1, f.StatusCode, truncate(f.Message, 120))
		fmt.Fprintf(os.Stdout, "    orders: %s\n", joinIDs(f.OrderIDs))
	}
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
