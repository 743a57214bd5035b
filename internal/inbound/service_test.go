package inbound

import (
	"context"
	"testing"
	"time"

	"github.com/SeptianAdiraharja/Inventory/internal/items"
	"github.com/SeptianAdiraharja/Inventory/internal/ledger"
	"github.com/SeptianAdiraharja/Inventory/pkg/db"
	"github.com/SeptianAdiraharja/Inventory/pkg/db/dbtest"
	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/SeptianAdiraharja/Inventory/pkg/logger"
	"github.com/SeptianAdiraharja/Inventory/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

type fixture struct {
	svc      Service
	client   *db.Client
	supplier *models.Supplier
	actor    uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.New(t)
	conn := client.DB()

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn), logger.Nop(), nil)
	require.NoError(t, err)
	itemSvc, err := items.NewService(items.NewRepository(conn))
	require.NoError(t, err)

	svc, err := NewService(NewRepository(conn), client, ledgerSvc, itemSvc, logger.Nop(), nil, func() time.Time { return fixedNow })
	require.NoError(t, err)

	return fixture{
		svc:      svc,
		client:   client,
		supplier: dbtest.MustSupplier(t, conn, "PT Sumber"),
		actor:    uuid.New(),
	}
}

func (f fixture) receipt(itemID uuid.UUID, qty int) ReceiptInput {
	return ReceiptInput{ItemID: itemID, SupplierID: f.supplier.ID, Quantity: qty}
}

func movementCount(t *testing.T, f fixture, reason enums.MovementReason) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.client.DB().Model(&models.StockMovement{}).Where("reason = ?", reason).Count(&count).Error)
	return count
}

func TestReceiveThenDeleteRestoresStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := dbtest.MustItem(t, f.client.DB(), "INB-1", 4)

	record, err := f.svc.Receive(ctx, f.actor, f.receipt(item.ID, 6))
	require.NoError(t, err)
	require.NotNil(t, record.Item)
	require.NotNil(t, record.Supplier)
	assert.Equal(t, 6, record.Quantity)
	assert.Equal(t, f.actor, record.CreatedBy)
	assert.Equal(t, 10, dbtest.Stock(t, f.client.DB(), item.ID))

	require.NoError(t, f.svc.DeleteReceipt(ctx, f.actor, record.ID))
	assert.Equal(t, 4, dbtest.Stock(t, f.client.DB(), item.ID))

	_, err = f.svc.Get(ctx, record.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	assert.EqualValues(t, 1, movementCount(t, f, enums.MovementReasonInboundReceive))
	assert.EqualValues(t, 1, movementCount(t, f, enums.MovementReasonInboundDelete))
}

func TestReceiveValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := dbtest.MustItem(t, f.client.DB(), "INB-2", 0)
	yesterday := fixedNow.AddDate(0, 0, -1)

	cases := []struct {
		name  string
		actor uuid.UUID
		input ReceiptInput
		code  pkgerrors.Code
	}{
		{"missing actor", uuid.Nil, f.receipt(item.ID, 1), pkgerrors.CodeUnauthorized},
		{"zero quantity", f.actor, f.receipt(item.ID, 0), pkgerrors.CodeValidation},
		{"missing item", f.actor, f.receipt(uuid.Nil, 1), pkgerrors.CodeValidation},
		{"past expiry", f.actor, ReceiptInput{ItemID: item.ID, SupplierID: f.supplier.ID, Quantity: 1, ExpiredAt: &yesterday}, pkgerrors.CodeValidation},
		{"unknown supplier", f.actor, ReceiptInput{ItemID: item.ID, SupplierID: uuid.New(), Quantity: 1}, pkgerrors.CodeNotFound},
		{"unknown item", f.actor, f.receipt(uuid.New(), 1), pkgerrors.CodeNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Receive(ctx, tc.actor, tc.input)
			require.Error(t, err)
			assert.Equal(t, tc.code, pkgerrors.As(err).Code())
		})
	}

	assert.Equal(t, 0, dbtest.Stock(t, f.client.DB(), item.ID))
	var count int64
	require.NoError(t, f.client.DB().Model(&models.InboundRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestReceiveAcceptsExpiryToday(t *testing.T) {
	f := newFixture(t)
	item := dbtest.MustItem(t, f.client.DB(), "INB-3", 0)
	today := fixedNow.Add(-10 * time.Hour)

	record, err := f.svc.Receive(context.Background(), f.actor, ReceiptInput{
		ItemID:     item.ID,
		SupplierID: f.supplier.ID,
		Quantity:   2,
		ExpiredAt:  &today,
	})
	require.NoError(t, err)
	require.NotNil(t, record.ExpiredAt)
	assert.Equal(t, "2026-03-10", record.ExpiredAt.Format(dateLayout))
}

func TestEditReceiptSameItemAppliesDelta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := dbtest.MustItem(t, f.client.DB(), "INB-4", 0)

	record, err := f.svc.Receive(ctx, f.actor, f.receipt(item.ID, 10))
	require.NoError(t, err)

	edited, err := f.svc.EditReceipt(ctx, f.actor, record.ID, f.receipt(item.ID, 14))
	require.NoError(t, err)
	assert.Equal(t, 14, edited.Quantity)
	assert.Equal(t, 14, dbtest.Stock(t, f.client.DB(), item.ID))

	_, err = f.svc.EditReceipt(ctx, f.actor, record.ID, f.receipt(item.ID, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, dbtest.Stock(t, f.client.DB(), item.ID))

	// unchanged quantity writes no movement
	_, err = f.svc.EditReceipt(ctx, f.actor, record.ID, f.receipt(item.ID, 3))
	require.NoError(t, err)
	assert.EqualValues(t, 2, movementCount(t, f, enums.MovementReasonInboundEdit))
}

func TestEditReceiptMovesStockAcrossItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conn := f.client.DB()
	oldItem := dbtest.MustItem(t, conn, "INB-5", 0)
	newItem := dbtest.MustItem(t, conn, "INB-6", 1)

	record, err := f.svc.Receive(ctx, f.actor, f.receipt(oldItem.ID, 5))
	require.NoError(t, err)

	edited, err := f.svc.EditReceipt(ctx, f.actor, record.ID, f.receipt(newItem.ID, 7))
	require.NoError(t, err)
	assert.Equal(t, newItem.ID, edited.ItemID)
	assert.Equal(t, 0, dbtest.Stock(t, conn, oldItem.ID))
	assert.Equal(t, 8, dbtest.Stock(t, conn, newItem.ID))
}

func TestEditReceiptAcrossItemsIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conn := f.client.DB()
	oldItem := dbtest.MustItem(t, conn, "INB-7", 0)
	newItem := dbtest.MustItem(t, conn, "INB-8", 0)

	record, err := f.svc.Receive(ctx, f.actor, f.receipt(oldItem.ID, 5))
	require.NoError(t, err)
	// consume part of the received stock so the reversal cannot happen
	require.NoError(t, conn.Model(&models.Item{}).Where("id = ?", oldItem.ID).Update("stock", 2).Error)

	_, err = f.svc.EditReceipt(ctx, f.actor, record.ID, f.receipt(newItem.ID, 5))
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock), "got %v", err)

	assert.Equal(t, 2, dbtest.Stock(t, conn, oldItem.ID))
	assert.Equal(t, 0, dbtest.Stock(t, conn, newItem.ID))
	stored, err := f.svc.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, oldItem.ID, stored.ItemID)
	assert.Equal(t, 5, stored.Quantity)
}

func TestDeleteReceiptFailsWhenStockConsumed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conn := f.client.DB()
	item := dbtest.MustItem(t, conn, "INB-9", 0)

	record, err := f.svc.Receive(ctx, f.actor, f.receipt(item.ID, 5))
	require.NoError(t, err)
	require.NoError(t, conn.Model(&models.Item{}).Where("id = ?", item.ID).Update("stock", 3).Error)

	err = f.svc.DeleteReceipt(ctx, f.actor, record.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock), "got %v", err)
	assert.Equal(t, 3, dbtest.Stock(t, conn, item.ID))

	_, err = f.svc.Get(ctx, record.ID)
	require.NoError(t, err)
}

func TestDeleteReceiptUnknownRecord(t *testing.T) {
	f := newFixture(t)
	err := f.svc.DeleteReceipt(context.Background(), f.actor, uuid.New())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestListFiltersAndPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conn := f.client.DB()
	first := dbtest.MustItem(t, conn, "INB-10", 0)
	second := dbtest.MustItem(t, conn, "INB-11", 0)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Receive(ctx, f.actor, f.receipt(first.ID, i+1))
		require.NoError(t, err)
	}
	_, err := f.svc.Receive(ctx, f.actor, f.receipt(second.ID, 9))
	require.NoError(t, err)

	page, err := f.svc.List(ctx, ListFilter{ItemID: &first.ID}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := f.svc.List(ctx, ListFilter{ItemID: &first.ID}, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Records, 1)
	assert.Empty(t, rest.NextCursor)

	_, err = f.svc.List(ctx, ListFilter{}, pagination.Params{Cursor: "not-a-cursor"})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
