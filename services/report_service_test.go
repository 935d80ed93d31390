package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/pkg/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestInventoryReport(t *testing.T) {
	e := newEnv(t)
	tn := testdb.Tenant(t, e.db, "xls-shop")
	rival := testdb.Tenant(t, e.db, "xls-rival")
	testdb.Item(t, e.db, tn.ID, "Honey", 25, testdb.Tracked(4))
	testdb.Item(t, e.db, tn.ID, "Olive Oil", 40)
	staff := merchant(t, e, "s@xls.io", tn.ID)
	svc := NewReportService(e.items, e.tenants, e.pol, e.log)
	svc.Now = func() time.Time { return e.now }

	rep, err := svc.InventoryReport(staff, "")
	require.NoError(t, err)
	assert.Equal(t, "inventory-xls-shop-20250310.xlsx", rep.Filename)

	f, err := excelize.OpenReader(bytes.NewReader(rep.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(inventorySheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 4)
	assert.Equal(t, "Item ID", rows[0][0])
	assert.Equal(t, "Honey", rows[1][1])
	assert.Equal(t, "low_stock", rows[1][8])
	assert.Equal(t, "100", rows[1][9])
	assert.Equal(t, "untracked", rows[2][8])
	assert.Equal(t, "Total", rows[4][1])

	_, err = svc.InventoryReport(staff, rival.Slug)
	requireKind(t, err, apperr.Forbidden)
}
