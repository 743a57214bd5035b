// Package dbtest opens throwaway sqlite databases with the inventory schema
// and seeds reference rows for repository and service tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/SeptianAdiraharja/Inventory/pkg/db"
	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/migrate"
)

// New returns a client over a private in-memory database. The pool holds a
// single connection, so concurrent transactions queue instead of failing
// with SQLITE_BUSY; every query inside a transaction must use its tx.
func New(t testing.TB) *db.Client {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_", "?", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.AutoMigrateModels(conn); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db.NewFromConn(conn)
}

// MustCategory inserts a category.
func MustCategory(t testing.TB, conn *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name}
	if err := conn.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

// MustItem inserts an item with its own category.
func MustItem(t testing.TB, conn *gorm.DB, code string, stock int) *models.Item {
	t.Helper()
	category := MustCategory(t, conn, "category-"+code)
	item := &models.Item{
		CategoryID: category.ID,
		Name:       "Item " + code,
		Code:       code,
		Stock:      stock,
	}
	if err := conn.Create(item).Error; err != nil {
		t.Fatalf("create item: %v", err)
	}
	return item
}

// MustSupplier inserts a supplier.
func MustSupplier(t testing.TB, conn *gorm.DB, name string) *models.Supplier {
	t.Helper()
	supplier := &models.Supplier{Name: name}
	if err := conn.Create(supplier).Error; err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	return supplier
}

// MustGuest inserts a guest registered by createdBy.
func MustGuest(t testing.TB, conn *gorm.DB, name string, createdBy uuid.UUID) *models.Guest {
	t.Helper()
	guest := &models.Guest{Name: name, CreatedBy: createdBy}
	if err := conn.Create(guest).Error; err != nil {
		t.Fatalf("create guest: %v", err)
	}
	return guest
}

// Stock reloads the current stock of itemID.
func Stock(t testing.TB, conn *gorm.DB, itemID uuid.UUID) int {
	t.Helper()
	var item models.Item
	if err := conn.First(&item, "id = ?", itemID).Error; err != nil {
		t.Fatalf("reload item: %v", err)
	}
	return item.Stock
}
