package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sweetshop/constants"
	"sweetshop/dto"
	"sweetshop/models"
	"sweetshop/repositories"
)

type ISweetService interface {
	Create(ctx context.Context, input dto.CreateSweetInput, ownerID string) (*models.Sweet, error)
	FindById(ctx context.Context, id string) (*models.Sweet, error)
	FindAll(ctx context.Context, page dto.PageQuery) ([]models.Sweet, error)
	Search(ctx context.Context, query dto.SearchSweetsQuery) ([]models.Sweet, error)
	Update(ctx context.Context, id string, input dto.UpdateSweetInput) (*models.Sweet, error)
	Delete(ctx context.Context, id string) error
}

type SweetService struct {
	repository repositories.ISweetRepository
	logger     *zap.Logger
}

func NewSweetService(repository repositories.ISweetRepository, logger *zap.Logger) ISweetService {
	return &SweetService{repository: repository, logger: logger}
}

func (s *SweetService) Create(ctx context.Context, input dto.CreateSweetInput, ownerID string) (*models.Sweet, error) {
	if input.Price == nil {
		return nil, newValidationError("price is required")
	}

	newSweet := models.Sweet{
		Category:    input.Category,
		Price:       *input.Price,
		Description: strings.TrimSpace(input.Description),
		CreatedByID: ownerID,
	}
	newSweet.SetName(strings.TrimSpace(input.Name))
	if input.Quantity != nil {
		newSweet.Quantity = *input.Quantity
	}
	if err := validateEntity(&newSweet); err != nil {
		return nil, err
	}

	if err := s.ensureUniqueName(ctx, newSweet.Name, ""); err != nil {
		return nil, err
	}

	if err := s.repository.Create(ctx, &newSweet); err != nil {
		return nil, translateStoreError(err)
	}

	s.logger.Info("sweet created",
		zap.String("sweet_id", newSweet.ID),
		zap.String("name", newSweet.Name),
		zap.String("owner_id", ownerID))
	return &newSweet, nil
}

func (s *SweetService) FindById(ctx context.Context, id string) (*models.Sweet, error) {
	sweet, err := s.repository.FindById(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return sweet, nil
}

// FindAll 作成者の名前とメールアドレスを含めて返す
func (s *SweetService) FindAll(ctx context.Context, page dto.PageQuery) ([]models.Sweet, error) {
	sweets, err := s.repository.FindAll(ctx, toPage(page), true)
	if err != nil {
		return nil, fmt.Errorf("find sweets: %w", err)
	}
	return sweets, nil
}

// Search 未知のカテゴリはエラーではなく 0 件
func (s *SweetService) Search(ctx context.Context, query dto.SearchSweetsQuery) ([]models.Sweet, error) {
	category := strings.TrimSpace(query.Category)
	if category != "" && !constants.IsValidCategory(category) {
		return []models.Sweet{}, nil
	}

	sweets, err := s.repository.Search(ctx, repositories.SweetFilter{
		Name:     strings.TrimSpace(query.Name),
		Category: category,
		MinPrice: query.MinPrice,
		MaxPrice: query.MaxPrice,
		Page:     toPage(query.PageQuery),
	})
	if err != nil {
		return nil, fmt.Errorf("search sweets: %w", err)
	}
	return sweets, nil
}

func (s *SweetService) Update(ctx context.Context, id string, input dto.UpdateSweetInput) (*models.Sweet, error) {
	targetSweet, err := s.FindById(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		targetSweet.SetName(strings.TrimSpace(*input.Name))
		updates["name"] = targetSweet.Name
		updates["name_lower"] = targetSweet.NameLower
	}
	if input.Category != nil {
		targetSweet.Category = *input.Category
		updates["category"] = targetSweet.Category
	}
	if input.Price != nil {
		targetSweet.Price = *input.Price
		updates["price"] = targetSweet.Price
	}
	if input.Quantity != nil {
		targetSweet.Quantity = *input.Quantity
		updates["quantity"] = targetSweet.Quantity
	}
	if input.Description != nil {
		targetSweet.Description = strings.TrimSpace(*input.Description)
		updates["description"] = targetSweet.Description
	}

	// マージ後のレコード全体を検証する
	if err := validateEntity(targetSweet); err != nil {
		return nil, err
	}
	if input.Name != nil {
		if err := s.ensureUniqueName(ctx, targetSweet.Name, id); err != nil {
			return nil, err
		}
	}

	updatedSweet, err := s.repository.Update(ctx, id, updates)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return updatedSweet, nil
}

func (s *SweetService) Delete(ctx context.Context, id string) error {
	if err := s.repository.Delete(ctx, id); err != nil {
		return translateStoreError(err)
	}
	s.logger.Info("sweet deleted", zap.String("sweet_id", id))
	return nil
}

func (s *SweetService) ensureUniqueName(ctx context.Context, name string, excludeID string) error {
	exists, err := s.repository.NameExists(ctx, name, excludeID)
	if err != nil {
		return fmt.Errorf("check name: %w", err)
	}
	if exists {
		return ErrDuplicateName
	}
	return nil
}

func toPage(q dto.PageQuery) repositories.Page {
	if q.Limit <= 0 {
		return repositories.Page{}
	}
	limit := q.Limit
	if limit > constants.MaxPageLimit {
		limit = constants.MaxPageLimit
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	return repositories.Page{Offset: (page - 1) * limit, Limit: limit}
}

func translateStoreError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateName
	default:
		return err
	}
}
