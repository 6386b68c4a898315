package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lukman83/wbops/internal/apperr"
	"github.com/lukman83/wbops/internal/jobs"
	"github.com/lukman83/wbops/internal/wb"
)

// tools exposes runner jobs as MCP tools.
type tools struct {
	runner *jobs.Runner
}

func cabinetArg() mcp.ToolOption {
	return mcp.WithString("cabinet",
		mcp.Required(),
		mcp.Description("Cabinet id, e.g. A"),
	)
}

func supplyArg() mcp.ToolOption {
	return mcp.WithString("supply_id",
		mcp.Required(),
		mcp.Description("Supply id, e.g. WB-GI-12345678"),
	)
}

func registerTools(s *server.MCPServer, runner *jobs.Runner) {
	t := &tools{runner: runner}

	s.AddTool(mcp.NewTool("list_cabinets",
		mcp.WithDescription("List configured seller cabinets"),
	), t.handleListCabinets)

	s.AddTool(mcp.NewTool("list_active_supplies",
		mcp.WithDescription("List the cabinet's supplies that are not done, newest first"),
		cabinetArg(),
	), t.handleListActiveSupplies)

	s.AddTool(mcp.NewTool("export_new_orders",
		mcp.WithDescription("Export the cabinet's new assembly tasks to its orders workbook"),
		cabinetArg(),
	), t.handleExportNewOrders)

	s.AddTool(mcp.NewTool("export_active_supplies",
		mcp.WithDescription("Export the cabinet's active supplies to a workbook"),
		cabinetArg(),
	), t.handleExportActiveSupplies)

	s.AddTool(mcp.NewTool("export_supply_orders",
		mcp.WithDescription("Export order ids of not-purchased supplies"),
		cabinetArg(),
		mcp.WithString("supply_ids",
			mcp.Description("Comma-separated supply ids (default: open not-purchased supplies)"),
		),
	), t.handleExportSupplyOrders)

	s.AddTool(mcp.NewTool("merge_with_base",
		mcp.WithDescription("Join the cabinet's exported orders with the product base"),
		cabinetArg(),
	), t.handleMergeWithBase)

	s.AddTool(mcp.NewTool("split_pickup_points",
		mcp.WithDescription("Combine merged workbooks and split them by pickup point"),
	), t.handleSplitPickupPoints)

	s.AddTool(mcp.NewTool("split_groups",
		mcp.WithDescription("Split a routed workbook by seller group"),
		mcp.WithString("set",
			mcp.Required(),
			mcp.Description("Split set name from the tables, e.g. moscow or ekb"),
		),
	), t.handleSplitGroups)

	s.AddTool(mcp.NewTool("create_supply",
		mcp.WithDescription("Create a supply and return its id"),
		cabinetArg(),
		mcp.WithString("name",
			mcp.Description("Supply name (default: not-purchased prefix and today's date)"),
		),
	), t.handleCreateSupply)

	s.AddTool(mcp.NewTool("delete_supply",
		mcp.WithDescription("Delete an empty supply"),
		cabinetArg(),
		supplyArg(),
	), t.handleDeleteSupply)

	s.AddTool(mcp.NewTool("deliver_supply",
		mcp.WithDescription("Hand a supply over to delivery"),
		cabinetArg(),
		supplyArg(),
	), t.handleDeliverSupply)

	s.AddTool(mcp.NewTool("supply_order_ids",
		mcp.WithDescription("List the order ids attached to a supply"),
		cabinetArg(),
		supplyArg(),
	), t.handleSupplyOrderIDs)

	s.AddTool(mcp.NewTool("attach_bought",
		mcp.WithDescription("Create a dated supply with the orders marked as purchased"),
		cabinetArg(),
	), t.handleAttachBought)

	s.AddTool(mcp.NewTool("update_stocks",
		mcp.WithDescription("Set the stock of every barcode of an article in a warehouse"),
		cabinetArg(),
		mcp.WithString("article", mcp.Required(), mcp.Description("Seller article")),
		mcp.WithString("warehouse", mcp.Required(), mcp.Description("Warehouse name or id")),
		mcp.WithNumber("amount", mcp.Required(), mcp.Description("Stock amount, zero or more")),
	), t.handleUpdateStocks)

	s.AddTool(mcp.NewTool("set_expirations",
		mcp.WithDescription("Send the expiration dates of every workbook under a folder"),
		cabinetArg(),
		mcp.WithString("prefix", mcp.Description("Folder with the workbooks; defaults to the cabinet's expiration folder")),
	), t.handleSetExpirations)

	s.AddTool(mcp.NewTool("return_uncollected",
		mcp.WithDescription("Attach orders marked as not collected to a supply and mark them sent"),
		cabinetArg(),
		supplyArg(),
		mcp.WithString("prefix", mcp.Description("Folder with the pick lists; defaults to the cabinet's pick-list folder")),
	), t.handleReturnUncollected)

	s.AddTool(mcp.NewTool("save_supply_barcode",
		mcp.WithDescription("Download the supply sticker and store it next to the supply lists"),
		cabinetArg(),
		supplyArg(),
		mcp.WithString("type", mcp.Enum(wb.BarcodeTypes...), mcp.Description("Sticker format, png by default")),
	), t.handleSaveSupplyBarcode)

	s.AddTool(mcp.NewTool("highlight",
		mcp.WithDescription("Colour workbook rows by order age"),
		mcp.WithString("keys", mcp.Description("Comma-separated workbook keys; defaults to the configured list")),
	), t.handleHighlight)

	s.AddTool(mcp.NewTool("cleanup",
		mcp.WithDescription("Delete the workbooks directly under a folder"),
		mcp.WithString("prefix", mcp.Description("Folder to clean; defaults to the supply lists folder")),
	), t.handleCleanup)
}

// toolError renders err with its remediation hint, if any.
func toolError(op string, err error) *mcp.CallToolResult {
	msg := fmt.Sprintf("%s error: %v", op, err)
	if hint := apperr.Hint(err); hint != "" {
		msg += "\nhint: " + hint
	}
	return mcp.NewToolResultError(msg)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func requireString(request mcp.CallToolRequest, key string) (string, *mcp.CallToolResult) {
	v := strings.TrimSpace(request.GetString(key, ""))
	if v == "" {
		return "", mcp.NewToolResultError(key + " is required")
	}
	return v, nil
}

// splitList parses a comma-separated argument, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (t *tools) handleListCabinets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.runner.Tables.Cabinets)
}

func (t *tools) handleListActiveSupplies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cab, bad := requireString(request, "cabinet")
	if bad != nil {
		return bad, nil
	}
	supplies, err := t.runner.ListActiveSupplies(ctx, cab)
	if err != nil {
		return toolError("list supplies", err), nil
	}
	return jsonResult(supplies)
}

func (t *tools) handleExportNewOrders(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cab, bad := requireString(request, "cabinet")
	if bad != nil {
		return bad, nil
	}
	out, err := t.runner.ExportNewOrders(ctx, cab)
	if err != nil {
		return toolError("export orders", err), nil
	}
	if out.Key == "" {
		return mcp.NewToolResultText("no new orders"), nil
	}
	return jsonResult(out)
}

func (t *tools) handleExportActiveSupplies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cab, bad := requireString(request, "cabinet")
	if bad != nil {
		return bad, nil
	}
	out, err := t.runner.ExportActiveSupplies(ctx, cab)
	if err != nil {
		return toolError("export supplies", err), nil
	}
	return jsonResult(out)
}

func (t *tools) handleExportSupplyOrders(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cab, bad := requireString(request, "cabinet")
	if bad != nil {
		return bad, nil
	}
	out, err := t.runner.ExportSupplyOrders(ctx, cab, splitList(request.GetString("supply_ids", "")))
	if err != nil {
		return toolError("export supply orders", err), nil
	}
	return jsonResult(out)
}

func (t *tools) handleMergeWithBase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cab, bad := requireString(request, "cabinet")
	if bad != nil {
		return bad, nil
	}
	out, err := t.runner.MergeWithBase(ctx, cab)
	if err != nil {
		return toolError("merge", err), nil
	}
	return jsonResult(out)
}

func (t *tools) handleSplitPickupPoints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	outs, err := t.runner.SplitByPickupPoint(ctx)
	if err != nil {
		return toolError("split", err), nil
	}
	return jsonResult(outs)
}

func (t *tools) handleSplitGroups(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	set, bad := requireString(request, "set")
	if bad != nil {
		return bad, nil
	}
	outs, err := t.runner.SplitByGroup(ctx, set)
	if err != nil {
		return toolError("split", err), nil
	}
	return jsonResult(outs)
}

func (t *tools) handleCreateSupply(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cab, bad := requireString(request, "cabinet")
	if bad != nil {
		return bad, nil
	}
	id, err := t.runner.CreateSupply(ctx, cab, request.GetString("name", ""))
	if err != nil {
		return toolError("create supply", err), nil
	}
	return mcp.NewToolResultText(id), nil
}

func (t *tools) handleDeleteSupply(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cab, bad := requireString(request, "cabinet")
	if bad != nil {
		return bad, nil
	}
	id, bad := requireString(request, "supply_id")
	if bad != nil {
		return bad, nil
	}
	if err := t.runner.DeleteSupply(ctx, cab, id); err != nil {
		return toolError("delete supply", err), nil
	}
	return mcp.NewToolResultText("OK"), nil
}

func (t *tools) handleDeliverSupply(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cab, bad := requireString(request, "cabinet")
	if bad != nil {
		return bad, nil
	}
	id, bad := requireString(request, "supply_id")
	if bad != nil {
		return bad, nil
	}
	if err := t.runner.DeliverSupply(ctx, cab, id); err != nil {
		return toolError("deliver supply", err), nil
	}
	return mcp.NewToolResultText("OK"), nil
}

func (t *tools) handleSupplyOrderIDs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cab, bad := requireString(request, "cabinet")
	if bad != nil {
		return bad, nil
	}
	id, bad := requireString(request, "supply_id")
	if bad != nil {
		return bad, nil
	}
	ids, err := t.runner.SupplyOrderIDs(ctx, cab, id)
	if err != nil {
		return toolError("supply orders", err), nil
	}
	return jsonResult(ids)
}

func (t *tools) handleAttachBought(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cab, bad := requireString(request, "cabinet")
	if bad != nil {
		return bad, nil
	}
	res, err := t.runner.CreateBoughtSupply(ctx, cab)
	if err != nil {
		return toolError("attach bought", err), nil
	}
	return jsonResult(res)
}

func (t *tools) handleUpdateStocks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cab, bad := requireString(request, "cabinet")
	if bad != nil {
		return bad, nil
	}
	article, bad := requireString(request, "article")
	if bad != nil {
		return bad, nil
	}
	warehouse, bad := requireString(request, "warehouse")
	if bad != nil {
		return bad, nil
	}
	amount := request.GetInt("amount", -1)
	rep, err := t.runner.UpdateStocks(ctx, cab, article, warehouse, amount)
	if err != nil {
		return toolError("update stocks", err), nil
	}
	return jsonResult(rep)
}

func (t *tools) handleSetExpirations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cab, bad := requireString(request, "cabinet")
	if bad != nil {
		return bad, nil
	}
	rep, err := t.runner.SetExpirations(ctx, cab, strings.TrimSpace(request.GetString("prefix", "")))
	if err != nil {
		return toolError("set expirations", err), nil
	}
	return jsonResult(rep)
}

func (t *tools) handleReturnUncollected(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cab, bad := requireString(request, "cabinet")
	if bad != nil {
		return bad, nil
	}
	id, bad := requireString(request, "supply_id")
	if bad != nil {
		return bad, nil
	}
	res, err := t.runner.ReturnUncollected(ctx, cab, strings.TrimSpace(request.GetString("prefix", "")), id)
	if err != nil {
		return toolError("return uncollected", err), nil
	}
	return jsonResult(res)
}

func (t *tools) handleSaveSupplyBarcode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cab, bad := requireString(request, "cabinet")
	if bad != nil {
		return bad, nil
	}
	id, bad := requireString(request, "supply_id")
	if bad != nil {
		return bad, nil
	}
	kind := strings.ToLower(strings.TrimSpace(request.GetString("type", "png")))
	key, err := t.runner.SaveSupplyBarcode(ctx, cab, id, kind)
	if err != nil {
		return toolError("supply barcode", err), nil
	}
	return mcp.NewToolResultText(t.runner.Store.Describe(key)), nil
}

func (t *tools) handleHighlight(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	outs, err := t.runner.Highlight(ctx, splitList(request.GetString("keys", "")))
	if err != nil {
		return toolError("highlight", err), nil
	}
	return jsonResult(outs)
}

func (t *tools) handleCleanup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := t.runner.Cleanup(ctx, strings.TrimSpace(request.GetString("prefix", "")))
	if err != nil {
		return toolError("cleanup", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %d workbooks", n)), nil
}
