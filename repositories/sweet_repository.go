package repositories

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sweetshop/models"
)

// Page Limit が 0 の場合はページングしない
type Page struct {
	Offset int
	Limit  int
}

type SweetFilter struct {
	Name     string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Page     Page
}

// SweetStats 在庫全体の集計値
type SweetStats struct {
	Total      int64
	TotalValue float64
	AvgPrice   float64
	OutOfStock int64
	LowStock   int64
	InStock    int64
}

type CategoryCount struct {
	Category string
	Count    int64
}

type ISweetRepository interface {
	Create(ctx context.Context, sweet *models.Sweet) error
	FindById(ctx context.Context, id string) (*models.Sweet, error)
	FindAll(ctx context.Context, page Page, withOwner bool) ([]models.Sweet, error)
	Search(ctx context.Context, filter SweetFilter) ([]models.Sweet, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (*models.Sweet, error)
	Delete(ctx context.Context, id string) error
	NameExists(ctx context.Context, name string, excludeID string) (bool, error)
	DecrementStock(ctx context.Context, id string, quantity int) (*models.Sweet, bool, error)
	IncrementStock(ctx context.Context, id string, quantity int) (*models.Sweet, bool, error)
	FindLowStock(ctx context.Context, threshold int) ([]models.Sweet, error)
	Statistics(ctx context.Context, lowStockThreshold int) (*SweetStats, []CategoryCount, error)
}

type SweetRepository struct {
	db *gorm.DB
}

func NewSweetRepository(db *gorm.DB) ISweetRepository {
	return &SweetRepository{db: db}
}

func (r *SweetRepository) Create(ctx context.Context, sweet *models.Sweet) error {
	if sweet.ID == "" {
		sweet.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(sweet).Error
}

func (r *SweetRepository) FindById(ctx context.Context, id string) (*models.Sweet, error) {
	var sweet models.Sweet
	if err := r.db.WithContext(ctx).First(&sweet, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sweet, nil
}

func (r *SweetRepository) FindAll(ctx context.Context, page Page, withOwner bool) ([]models.Sweet, error) {
	qb := r.db.WithContext(ctx).Model(&models.Sweet{})
	if withOwner {
		qb = qb.Preload("CreatedBy")
	}
	var sweets []models.Sweet
	if err := paginate(qb, page).Order("created_at ASC, id ASC").Find(&sweets).Error; err != nil {
		return nil, err
	}
	return sweets, nil
}

func (r *SweetRepository) Search(ctx context.Context, filter SweetFilter) ([]models.Sweet, error) {
	qb := r.db.WithContext(ctx).Model(&models.Sweet{})
	if filter.Name != "" {
		qb = qb.Where(`name_lower LIKE ? ESCAPE '\'`, "%"+escapeLike(models.FoldName(filter.Name))+"%")
	}
	if filter.Category != "" {
		qb = qb.Where("category = ?", filter.Category)
	}
	if filter.MinPrice != nil {
		qb = qb.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		qb = qb.Where("price <= ?", *filter.MaxPrice)
	}

	var sweets []models.Sweet
	if err := paginate(qb, filter.Page).Order("created_at ASC, id ASC").Find(&sweets).Error; err != nil {
		return nil, err
	}
	return sweets, nil
}

func (r *SweetRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*models.Sweet, error) {
	db := r.db.WithContext(ctx)
	if len(updates) > 0 {
		result := db.Model(&models.Sweet{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}

	var updated models.Sweet
	if err := db.First(&updated, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *SweetRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Sweet{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *SweetRepository) NameExists(ctx context.Context, name string, excludeID string) (bool, error) {
	var count int64
	qb := r.db.WithContext(ctx).Model(&models.Sweet{}).Where("name = ?", name)
	if excludeID != "" {
		qb = qb.Where("id <> ?", excludeID)
	}
	if err := qb.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DecrementStock 在庫が足りる場合のみ減算する（条件付き UPDATE による CAS）
// 在庫不足の場合は applied=false で現在の状態を返す
func (r *SweetRepository) DecrementStock(ctx context.Context, id string, quantity int) (*models.Sweet, bool, error) {
	var sweet models.Sweet
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Sweet{}).
			Where("id = ? AND quantity >= ?", id, quantity).
			UpdateColumns(map[string]interface{}{
				"quantity":   gorm.Expr("quantity - ?", quantity),
				"updated_at": tx.NowFunc(),
			})
		if result.Error != nil {
			return result.Error
		}
		applied = result.RowsAffected > 0
		return tx.First(&sweet, "id = ?", id).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &sweet, applied, nil
}

// IncrementStock 加算後に int の上限を超える場合は applied=false で現在の状態を返す
func (r *SweetRepository) IncrementStock(ctx context.Context, id string, quantity int) (*models.Sweet, bool, error) {
	var sweet models.Sweet
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Sweet{}).
			Where("id = ? AND quantity <= ?", id, math.MaxInt-quantity).
			UpdateColumns(map[string]interface{}{
				"quantity":   gorm.Expr("quantity + ?", quantity),
				"updated_at": tx.NowFunc(),
			})
		if result.Error != nil {
			return result.Error
		}
		applied = result.RowsAffected > 0
		return tx.First(&sweet, "id = ?", id).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &sweet, applied, nil
}

func (r *SweetRepository) FindLowStock(ctx context.Context, threshold int) ([]models.Sweet, error) {
	var sweets []models.Sweet
	err := r.db.WithContext(ctx).
		Where("quantity <= ?", threshold).
		Order("quantity ASC, name ASC").
		Find(&sweets).Error
	if err != nil {
		return nil, err
	}
	return sweets, nil
}

// Statistics 在庫 0 / 1〜threshold / threshold 超 の 3 区分で数える
func (r *SweetRepository) Statistics(ctx context.Context, lowStockThreshold int) (*SweetStats, []CategoryCount, error) {
	db := r.db.WithContext(ctx)

	var stats SweetStats
	err := db.Model(&models.Sweet{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(price * quantity), 0) AS total_value,
			COALESCE(AVG(price), 0) AS avg_price,
			COALESCE(SUM(CASE WHEN quantity = 0 THEN 1 ELSE 0 END), 0) AS out_of_stock,
			COALESCE(SUM(CASE WHEN quantity > 0 AND quantity <= ? THEN 1 ELSE 0 END), 0) AS low_stock,
			COALESCE(SUM(CASE WHEN quantity > ? THEN 1 ELSE 0 END), 0) AS in_stock`,
			lowStockThreshold, lowStockThreshold).
		Scan(&stats).Error
	if err != nil {
		return nil, nil, err
	}

	var categories []CategoryCount
	err = db.Model(&models.Sweet{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("category ASC").
		Scan(&categories).Error
	if err != nil {
		return nil, nil, err
	}
	return &stats, categories, nil
}

func paginate(qb *gorm.DB, page Page) *gorm.DB {
	if page.Limit <= 0 {
		return qb
	}
	return qb.Offset(page.Offset).Limit(page.Limit)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
