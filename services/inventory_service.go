package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sweetshop/constants"
	"sweetshop/dto"
	"sweetshop/events"
	"sweetshop/models"
	"sweetshop/repositories"
)

type IInventoryService interface {
	Purchase(ctx context.Context, id string, quantity int) (*models.Sweet, error)
	Restock(ctx context.Context, id string, quantity int) (*models.Sweet, error)
	CheckStock(ctx context.Context, id string) (*dto.StockResponse, error)
	LowStockItems(ctx context.Context, threshold *int) ([]models.Sweet, error)
	Statistics(ctx context.Context) (*dto.StatisticsResponse, error)
}

type InventoryService struct {
	repository        repositories.ISweetRepository
	publisher         events.Publisher
	lowStockThreshold int
	logger            *zap.Logger
}

func NewInventoryService(
	repository repositories.ISweetRepository,
	publisher events.Publisher,
	lowStockThreshold int,
	logger *zap.Logger,
) IInventoryService {
	if lowStockThreshold < 0 {
		lowStockThreshold = constants.DefaultLowStockThreshold
	}
	return &InventoryService{
		repository:        repository,
		publisher:         publisher,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
	}
}

// Purchase 在庫チェックと減算は 1 つの条件付き UPDATE で行うため、
// 同時購入でも在庫が負になることはない
func (s *InventoryService) Purchase(ctx context.Context, id string, quantity int) (*models.Sweet, error) {
	if quantity <= 0 {
		return nil, newValidationError("quantity must be a positive integer")
	}

	sweet, applied, err := s.repository.DecrementStock(ctx, id, quantity)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if !applied {
		return nil, ErrInsufficientStock
	}

	s.logger.Info("sweet purchased",
		zap.String("sweet_id", sweet.ID),
		zap.Int("quantity", quantity),
		zap.Int("remaining", sweet.Quantity))

	s.publish(ctx, events.KeySweetPurchased, sweet, -quantity)
	if sweet.Quantity <= s.lowStockThreshold {
		s.publish(ctx, events.KeySweetLowStock, sweet, -quantity)
	}
	return sweet, nil
}

// Restock 加算後の在庫が int の上限を超える場合は ValidationError
func (s *InventoryService) Restock(ctx context.Context, id string, quantity int) (*models.Sweet, error) {
	if quantity <= 0 {
		return nil, newValidationError("quantity must be a positive integer")
	}

	sweet, applied, err := s.repository.IncrementStock(ctx, id, quantity)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if !applied {
		return nil, newValidationError("restock would exceed the maximum stock level")
	}

	s.logger.Info("sweet restocked",
		zap.String("sweet_id", sweet.ID),
		zap.Int("quantity", quantity),
		zap.Int("stock", sweet.Quantity))

	s.publish(ctx, events.KeySweetRestocked, sweet, quantity)
	return sweet, nil
}

func (s *InventoryService) CheckStock(ctx context.Context, id string) (*dto.StockResponse, error) {
	sweet, err := s.repository.FindById(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return &dto.StockResponse{
		ID:        sweet.ID,
		Name:      sweet.Name,
		Quantity:  sweet.Quantity,
		Available: sweet.Available(),
	}, nil
}

// LowStockItems threshold が nil の場合は設定値（既定 10）を使う。在庫 0 も含む
func (s *InventoryService) LowStockItems(ctx context.Context, threshold *int) ([]models.Sweet, error) {
	limit := s.lowStockThreshold
	if threshold != nil {
		if *threshold < 0 {
			return nil, newValidationError("threshold cannot be negative")
		}
		limit = *threshold
	}
	return s.repository.FindLowStock(ctx, limit)
}

// Statistics 在庫なし・残りわずか・在庫あり の境界は LowStockItems と同じ閾値を使う
func (s *InventoryService) Statistics(ctx context.Context) (*dto.StatisticsResponse, error) {
	stats, categories, err := s.repository.Statistics(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("sweet statistics: %w", err)
	}

	byCategory := make(map[string]int64, len(categories))
	for _, c := range categories {
		byCategory[c.Category] = c.Count
	}
	return &dto.StatisticsResponse{
		Total:             stats.Total,
		TotalValue:        stats.TotalValue,
		AvgPrice:          stats.AvgPrice,
		Categories:        byCategory,
		OutOfStock:        stats.OutOfStock,
		LowStock:          stats.LowStock,
		InStock:           stats.InStock,
		LowStockThreshold: s.lowStockThreshold,
	}, nil
}

func (s *InventoryService) publish(ctx context.Context, key string, sweet *models.Sweet, delta int) {
	payload := events.StockChanged{
		SweetID:  sweet.ID,
		Name:     sweet.Name,
		Delta:    delta,
		Quantity: sweet.Quantity,
		At:       time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, key, payload); err != nil {
		s.logger.Warn("failed to publish inventory event", zap.String("key", key), zap.Error(err))
	}
}
