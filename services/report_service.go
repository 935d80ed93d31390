// services/report_service.go
package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/access"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/repository"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ReportService ออกรายงาน stock ของร้านเป็น xlsx
type ReportService struct {
	Items   *repository.ItemRepository
	Tenants *repository.TenantRepository
	Policy  access.Policy
	Log     *zap.Logger
	Now     func() time.Time
}

func NewReportService(items *repository.ItemRepository, tenants *repository.TenantRepository, policy access.Policy, log *zap.Logger) *ReportService {
	return &ReportService{Items: items, Tenants: tenants, Policy: policy, Log: log, Now: time.Now}
}

const inventorySheet = "Inventory"

var inventoryHeader = []string{
	"Item ID", "Name", "Category", "Unit", "Price",
	"Tracked", "Inventory", "Low Stock Threshold", "Status", "Stock Value", "Archived",
}

var inventoryColWidths = []float64{10, 32, 20, 10, 12, 10, 12, 20, 14, 14, 10}

type Report struct {
	Filename string
	Data     []byte
}

func stockLabel(it *entity.Item) string {
	switch {
	case !it.TrackInventory:
		return "untracked"
	case it.OutOfStock():
		return "out_of_stock"
	case it.LowStock():
		return "low_stock"
	default:
		return "in_stock"
	}
}

// InventoryReport: หนึ่งแถวต่อสินค้า + แถวสรุปท้ายตาราง
func (s *ReportService) InventoryReport(a access.Actor, slug string) (*Report, error) {
	t, err := merchantTenant(s.Tenants, s.Policy, a, slug)
	if err != nil {
		return nil, err
	}
	items, err := s.Items.ListForTenant(t.ID)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	data, err := buildInventoryWorkbook(items)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to build report", err)
	}
	s.Log.Info("inventory report built", zap.Uint("tenant_id", t.ID), zap.Int("rows", len(items)))
	return &Report{
		Filename: fmt.Sprintf("inventory-%s-%s.xlsx", t.Slug, s.Now().Format("20060102")),
		Data:     data,
	}, nil
}

func buildInventoryWorkbook(items []entity.Item) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(inventorySheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]any, len(inventoryHeader))
	for i, h := range inventoryHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(inventorySheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(inventoryHeader), 1)
	if err := f.SetCellStyle(inventorySheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	for i, w := range inventoryColWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(inventorySheet, col, col, w); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	sum := summarize(items)
	for i := range items {
		it := &items[i]
		category := ""
		if it.Category != nil {
			category = it.Category.Name
		}
		value := 0.0
		if it.TrackInventory {
			value, _ = it.Price.Mul(decimal.NewFromInt(int64(it.Inventory))).Float64()
		}
		price, _ := it.Price.Float64()
		row := []any{
			it.ID, it.Name, category, it.Unit, price,
			yesNo(it.TrackInventory), it.Inventory, it.Threshold(), stockLabel(it), value, yesNo(it.IsArchived),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(inventorySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	// แถวสรุป
	totalValue, _ := sum.TotalInventoryValue.Float64()
	footer := []any{
		"", "Total", fmt.Sprintf("%d items", sum.TotalItems), "", "",
		sum.TrackedItems, "", "", fmt.Sprintf("%d low / %d out", sum.LowStockItems, sum.OutOfStockItems), totalValue, "",
	}
	cell, _ := excelize.CoordinatesToCellName(1, len(items)+3)
	if err := f.SetSheetRow(inventorySheet, cell, &footer); err != nil {
		return nil, fmt.Errorf("failed to write summary: %w", err)
	}

	if err := f.SetPanes(inventorySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
