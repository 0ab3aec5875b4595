package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

func setupStockTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	stockItems := `
CREATE TABLE IF NOT EXISTS stock_items (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  stock_value INTEGER NOT NULL DEFAULT 0,
  price_cents INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(stockItems).Error)
	require.NoError(t, db.Exec(`DELETE FROM stock_items`).Error)
	return db
}

func seedStockItem(t *testing.T, db *gorm.DB, id, qty, priceCents int) *models.StockItem {
	t.Helper()

	item := &models.StockItem{
		ID:         id,
		Name:       "test item",
		StockValue: qty,
		PriceCents: priceCents,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestRepositoryDecrementAppliesWhenEnoughStock(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedStockItem(t, db, 1, 5, 1500)

	applied, err := repo.Decrement(ctx, 1, 3)
	require.NoError(t, err)
	assert.True(t, applied)

	item, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, item.StockValue)
}

func TestRepositoryDecrementRefusesWhenInsufficient(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedStockItem(t, db, 2, 2, 900)

	applied, err := repo.Decrement(ctx, 2, 3)
	require.NoError(t, err)
	assert.False(t, applied)

	item, err := repo.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.StockValue)
}

func TestRepositoryDecrementMissingItemIsNoop(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)

	applied, err := repo.Decrement(context.Background(), 999, 1)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestRepositoryIncrementRestoresStock(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedStockItem(t, db, 3, 1, 500)

	require.NoError(t, repo.Increment(ctx, 3, 4))

	item, err := repo.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, item.StockValue)
}

func TestRepositorySetStockMissingItem(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)

	err := repo.SetStock(context.Background(), 42, 10)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryFindByIDs(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedStockItem(t, db, 10, 5, 1000)
	seedStockItem(t, db, 11, 7, 2000)

	items, err := repo.FindByIDs(ctx, []int{10, 11, 12})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 10, items[0].ID)
	assert.Equal(t, 11, items[1].ID)
}
