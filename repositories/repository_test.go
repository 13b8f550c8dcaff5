package repositories

import (
	"context"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sweetshop/infra"
	"sweetshop/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := infra.OpenSQLite(dsn, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedSweet(t *testing.T, repo ISweetRepository, name string, quantity int) *models.Sweet {
	t.Helper()
	return seedSweetWith(t, repo, name, "candy", 1.25, quantity)
}

func seedSweetWith(t *testing.T, repo ISweetRepository, name, category string, price float64, quantity int) *models.Sweet {
	t.Helper()
	sweet := &models.Sweet{
		Category:    category,
		Price:       price,
		Quantity:    quantity,
		CreatedByID: uuid.NewString(),
	}
	sweet.SetName(name)
	require.NoError(t, repo.Create(context.Background(), sweet))
	return sweet
}

func TestSweetRepository_DecrementStock(t *testing.T) {
	repo := NewSweetRepository(newTestDB(t))
	ctx := context.Background()
	sweet := seedSweet(t, repo, "Toffee", 10)

	updated, applied, err := repo.DecrementStock(ctx, sweet.ID, 4)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 6, updated.Quantity)

	current, applied, err := repo.DecrementStock(ctx, sweet.ID, 7)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 6, current.Quantity)

	_, _, err = repo.DecrementStock(ctx, "missing", 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSweetRepository_IncrementStock(t *testing.T) {
	repo := NewSweetRepository(newTestDB(t))
	ctx := context.Background()
	sweet := seedSweet(t, repo, "Toffee", 0)

	updated, applied, err := repo.IncrementStock(ctx, sweet.ID, 25)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 25, updated.Quantity)

	current, applied, err := repo.IncrementStock(ctx, sweet.ID, math.MaxInt)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 25, current.Quantity)

	_, _, err = repo.IncrementStock(ctx, "missing", 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSweetRepository_SearchFoldsNonASCIINames(t *testing.T) {
	repo := NewSweetRepository(newTestDB(t))
	ctx := context.Background()
	seedSweet(t, repo, "CRÈME BRÛLÉE", 3)
	seedSweet(t, repo, "Toffee", 3)

	for _, term := range []string{"crème", "CRÈME", "brûlée", "Crème Brûlée"} {
		sweets, err := repo.Search(ctx, SweetFilter{Name: term})
		require.NoError(t, err)
		require.Len(t, sweets, 1, term)
		assert.Equal(t, "CRÈME BRÛLÉE", sweets[0].Name)
	}
}

func TestSweetRepository_Statistics(t *testing.T) {
	repo := NewSweetRepository(newTestDB(t))
	ctx := context.Background()

	stats, categories, err := repo.Statistics(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, SweetStats{}, *stats)
	assert.Empty(t, categories)

	seedSweetWith(t, repo, "Empty", "chocolate", 2.0, 0)
	seedSweetWith(t, repo, "Five", "candy", 1.0, 5)
	seedSweetWith(t, repo, "Ten", "candy", 3.0, 10)
	seedSweetWith(t, repo, "Eleven", "gummy", 4.0, 11)

	stats, categories, err = repo.Statistics(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, SweetStats{
		Total:      4,
		TotalValue: 79,
		AvgPrice:   2.5,
		OutOfStock: 1,
		LowStock:   2,
		InStock:    1,
	}, *stats)
	assert.Equal(t, []CategoryCount{
		{Category: "candy", Count: 2},
		{Category: "chocolate", Count: 1},
		{Category: "gummy", Count: 1},
	}, categories)
}

func TestSweetRepository_QuantityCheckConstraint(t *testing.T) {
	repo := NewSweetRepository(newTestDB(t))
	sweet := seedSweet(t, repo, "Toffee", 1)

	_, err := repo.Update(context.Background(), sweet.ID, map[string]interface{}{"quantity": -1})
	assert.Error(t, err)
}

func TestSweetRepository_UniqueName(t *testing.T) {
	repo := NewSweetRepository(newTestDB(t))
	ctx := context.Background()
	first := seedSweet(t, repo, "Toffee", 1)

	err := repo.Create(ctx, &models.Sweet{Name: "Toffee", Category: "candy", CreatedByID: "x"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	exists, err := repo.NameExists(ctx, "Toffee", "")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.NameExists(ctx, "Toffee", first.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSweetRepository_UpdateAndDeleteMissing(t *testing.T) {
	repo := NewSweetRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Update(ctx, "missing", map[string]interface{}{"price": 2.0})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), gorm.ErrRecordNotFound)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now\\`, escapeLike(`50% off_now\`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestTokenRepository(t *testing.T) {
	repo := NewTokenRepository(newTestDB(t))
	ctx := context.Background()
	future := time.Now().Add(time.Hour).Unix()
	past := time.Now().Add(-time.Hour).Unix()

	require.NoError(t, repo.AddBlacklistedToken(ctx, "live", future))
	require.NoError(t, repo.AddBlacklistedToken(ctx, "live", future))
	require.NoError(t, repo.AddBlacklistedToken(ctx, "expired", past))

	blacklisted, err := repo.IsTokenBlacklisted(ctx, "live")
	require.NoError(t, err)
	assert.True(t, blacklisted)

	blacklisted, err = repo.IsTokenBlacklisted(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, blacklisted)

	require.NoError(t, repo.CleanExpiredTokens(ctx))

	blacklisted, err = repo.IsTokenBlacklisted(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, blacklisted)

	blacklisted, err = repo.IsTokenBlacklisted(ctx, "live")
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestRedisTokenRepository(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	prefix := "sweetshop:test:" + uuid.NewString() + ":"
	repo := NewRedisTokenRepository(client, prefix)

	require.NoError(t, repo.AddBlacklistedToken(ctx, "live", time.Now().Add(time.Minute).Unix()))
	require.NoError(t, repo.AddBlacklistedToken(ctx, "expired", time.Now().Add(-time.Minute).Unix()))

	blacklisted, err := repo.IsTokenBlacklisted(ctx, "live")
	require.NoError(t, err)
	assert.True(t, blacklisted)

	blacklisted, err = repo.IsTokenBlacklisted(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, blacklisted)

	ttl, err := client.TTL(ctx, prefix+"live").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, repo.CleanExpiredTokens(ctx))
}
