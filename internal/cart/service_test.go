package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SeptianAdiraharja/Inventory/internal/ledger"
	"github.com/SeptianAdiraharja/Inventory/pkg/db"
	"github.com/SeptianAdiraharja/Inventory/pkg/db/dbtest"
	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/SeptianAdiraharja/Inventory/pkg/logger"
	"github.com/SeptianAdiraharja/Inventory/pkg/pagination"
	"github.com/SeptianAdiraharja/Inventory/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.New(t)
	ledgerSvc, err := ledger.NewService(ledger.NewRepository(client.DB()), logger.Nop(), nil)
	require.NoError(t, err)
	svc, err := NewService(NewRepository(client.DB()), client, ledgerSvc, logger.Nop(), nil, time.Now, 5)
	require.NoError(t, err)
	return svc, client
}

func lineFor(cart *models.Cart, itemID uuid.UUID) *models.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ItemID == itemID {
			return &cart.Items[i]
		}
	}
	return nil
}

func activeReserved(t *testing.T, conn *gorm.DB, itemID uuid.UUID) int {
	t.Helper()
	var total int
	require.NoError(t, conn.Model(&models.CartItem{}).
		Select("COALESCE(SUM(cart_items.quantity), 0)").
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.item_id = ? AND carts.status = ?", itemID, enums.CartStatusActive).
		Scan(&total).Error)
	return total
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	t.Parallel()

	if _, err := NewService(nil, nil, nil, logger.Nop(), nil, nil, 0); err == nil {
		t.Fatal("expected error for missing repository")
	}
}

func TestAddUpdateCapacityScenario(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	conn := client.DB()
	item := dbtest.MustItem(t, conn, "A", 10)
	user := uuid.New()

	cart, err := svc.AddItems(ctx, user, []LineInput{{ItemID: item.ID, Quantity: 4}})
	require.NoError(t, err)
	line := lineFor(cart, item.ID)
	require.NotNil(t, line)
	assert.Equal(t, 4, line.Quantity)
	assert.Equal(t, enums.CartStatusActive, cart.Status)
	assert.Equal(t, 6, dbtest.Stock(t, conn, item.ID))

	cart, err = svc.UpdateQuantity(ctx, user, line.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, lineFor(cart, item.ID).Quantity)
	assert.Equal(t, 3, dbtest.Stock(t, conn, item.ID))

	_, err = svc.UpdateQuantity(ctx, user, line.ID, 12)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock), "got %v", err)
	assert.Equal(t, 3, dbtest.Stock(t, conn, item.ID))

	cart, err = svc.UpdateQuantity(ctx, user, line.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, lineFor(cart, item.ID).Quantity)
	assert.Equal(t, 8, dbtest.Stock(t, conn, item.ID))
}

func TestAddItemsMergesIntoExistingLine(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	conn := client.DB()
	item := dbtest.MustItem(t, conn, "M", 10)
	user := uuid.New()

	first, err := svc.AddItems(ctx, user, []LineInput{{ItemID: item.ID, Quantity: 2}, {ItemID: item.ID, Quantity: 1}})
	require.NoError(t, err)
	require.Len(t, first.Items, 1)
	assert.Equal(t, 3, first.Items[0].Quantity)

	second, err := svc.AddItems(ctx, user, []LineInput{{ItemID: item.ID, Quantity: 4}})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	require.Len(t, second.Items, 1)
	assert.Equal(t, 7, second.Items[0].Quantity)
	assert.Equal(t, 3, dbtest.Stock(t, conn, item.ID))
}

func TestAddItemsFailureAbortsEveryLine(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	conn := client.DB()
	plenty := dbtest.MustItem(t, conn, "P", 10)
	scarce := dbtest.MustItem(t, conn, "S", 1)
	empty := dbtest.MustItem(t, conn, "E", 0)
	user := uuid.New()

	_, err := svc.AddItems(ctx, user, []LineInput{{ItemID: plenty.ID, Quantity: 2}, {ItemID: scarce.ID, Quantity: 5}})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock), "got %v", err)

	_, err = svc.AddItems(ctx, user, []LineInput{{ItemID: plenty.ID, Quantity: 2}, {ItemID: empty.ID, Quantity: 1}})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeOutOfStock), "got %v", err)

	assert.Equal(t, 10, dbtest.Stock(t, conn, plenty.ID))
	assert.Equal(t, 1, dbtest.Stock(t, conn, scarce.ID))

	_, err = svc.GetActiveCart(ctx, user)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "rolled back add must not leave a cart")
}

func TestAddItemsValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	user := uuid.New()

	_, err := svc.AddItems(ctx, user, nil)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.AddItems(ctx, user, []LineInput{{ItemID: uuid.Nil, Quantity: 1}, {ItemID: uuid.New(), Quantity: 0}})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Len(t, details["errors"], 2)

	tooMany := make([]LineInput, 6)
	for i := range tooMany {
		tooMany[i] = LineInput{ItemID: uuid.New(), Quantity: 1}
	}
	_, err = svc.AddItems(ctx, user, tooMany)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.AddItems(ctx, user, []LineInput{{ItemID: uuid.New(), Quantity: 1}})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestOwnershipIsolation(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	conn := client.DB()
	item := dbtest.MustItem(t, conn, "O", 10)
	owner, intruder := uuid.New(), uuid.New()

	cart, err := svc.AddItems(ctx, owner, []LineInput{{ItemID: item.ID, Quantity: 4}})
	require.NoError(t, err)
	line := lineFor(cart, item.ID)

	_, err = svc.UpdateQuantity(ctx, intruder, line.ID, 1)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden), "got %v", err)
	_, err = svc.RemoveItem(ctx, intruder, line.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden), "got %v", err)
	_, err = svc.Submit(ctx, intruder, cart.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden), "got %v", err)
	_, err = svc.GetCart(ctx, types.Actor{ID: intruder, Role: enums.RoleEmployee}, cart.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden), "got %v", err)

	assert.Equal(t, 6, dbtest.Stock(t, conn, item.ID))
	reloaded, err := svc.GetCart(ctx, types.Actor{ID: uuid.New(), Role: enums.RoleAdmin}, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, lineFor(reloaded, item.ID).Quantity)
	assert.Equal(t, enums.CartStatusActive, reloaded.Status)
}

func TestRemoveItemRestoresStockAndDeletesEmptyCart(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	conn := client.DB()
	first := dbtest.MustItem(t, conn, "R1", 5)
	second := dbtest.MustItem(t, conn, "R2", 5)
	user := uuid.New()

	cart, err := svc.AddItems(ctx, user, []LineInput{{ItemID: first.ID, Quantity: 2}, {ItemID: second.ID, Quantity: 3}})
	require.NoError(t, err)

	cart, err = svc.RemoveItem(ctx, user, lineFor(cart, first.ID).ID)
	require.NoError(t, err)
	require.NotNil(t, cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, dbtest.Stock(t, conn, first.ID))

	deleted, err := svc.RemoveItem(ctx, user, lineFor(cart, second.ID).ID)
	require.NoError(t, err)
	assert.Nil(t, deleted)
	assert.Equal(t, 5, dbtest.Stock(t, conn, second.ID))

	var count int64
	require.NoError(t, conn.Model(&models.Cart{}).Where("id = ?", cart.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitFreezesCart(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	conn := client.DB()
	item := dbtest.MustItem(t, conn, "SB", 5)
	user := uuid.New()

	cart, err := svc.AddItems(ctx, user, []LineInput{{ItemID: item.ID, Quantity: 2}})
	require.NoError(t, err)

	submitted, err := svc.Submit(ctx, user, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CartStatusPending, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)
	assert.Equal(t, 3, dbtest.Stock(t, conn, item.ID))

	_, err = svc.Submit(ctx, user, cart.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)
	_, err = svc.UpdateQuantity(ctx, user, lineFor(submitted, item.ID).ID, 1)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	// the next add opens a fresh active cart
	next, err := svc.AddItems(ctx, user, []LineInput{{ItemID: item.ID, Quantity: 1}})
	require.NoError(t, err)
	assert.NotEqual(t, cart.ID, next.ID)

	status := enums.CartStatusPending
	page, err := svc.ListCarts(ctx, ListFilter{UserID: &user, Status: &status}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Carts, 1)
	assert.Equal(t, cart.ID, page.Carts[0].ID)
}

func TestConcurrentAddsNeverOversell(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	conn := client.DB()
	item := dbtest.MustItem(t, conn, "C", 10)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItems(ctx, uuid.New(), []LineInput{{ItemID: item.ID, Quantity: 3}})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, successes)
	stock := dbtest.Stock(t, conn, item.ID)
	assert.Equal(t, 1, stock)
	assert.Equal(t, 10, stock+activeReserved(t, conn, item.ID))
}
