package dto

import (
	"time"

	"sweetshop/models"
)

type CreateSweetInput struct {
	Name        string   `json:"name" binding:"required,max=255"`
	Category    string   `json:"category" binding:"required"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Quantity    *int     `json:"quantity" binding:"omitempty,gte=0"`
	Description string   `json:"description" binding:"max=1000"`
}

// UpdateSweetInput 指定されたフィールドのみ更新する
type UpdateSweetInput struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	Description *string  `json:"description"`
}

type SearchSweetsQuery struct {
	Name     string   `form:"name"`
	Category string   `form:"category"`
	MinPrice *float64 `form:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice *float64 `form:"maxPrice" binding:"omitempty,gte=0"`
	PageQuery
}

type PageQuery struct {
	Page  int `form:"page" binding:"omitempty,gte=1"`
	Limit int `form:"limit" binding:"omitempty,gte=1,lte=100"`
}

type StockInput struct {
	Quantity int `json:"quantity"`
}

type LowStockQuery struct {
	Threshold *int `form:"threshold" binding:"omitempty,gte=0"`
}

type OwnerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SweetResponse struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Category    string        `json:"category"`
	Price       float64       `json:"price"`
	Quantity    int           `json:"quantity"`
	Description string        `json:"description,omitempty"`
	CreatedBy   string        `json:"createdBy"`
	Owner       *OwnerSummary `json:"owner,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type StockResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Available bool   `json:"available"`
}

// StatisticsResponse 管理画面の在庫サマリー
type StatisticsResponse struct {
	Total             int64            `json:"total"`
	TotalValue        float64          `json:"totalValue"`
	AvgPrice          float64          `json:"avgPrice"`
	Categories        map[string]int64 `json:"categories"`
	OutOfStock        int64            `json:"outOfStock"`
	LowStock          int64            `json:"lowStock"`
	InStock           int64            `json:"inStock"`
	LowStockThreshold int              `json:"lowStockThreshold"`
}

func NewSweetResponse(sweet *models.Sweet) SweetResponse {
	res := SweetResponse{
		ID:          sweet.ID,
		Name:        sweet.Name,
		Category:    sweet.Category,
		Price:       sweet.Price,
		Quantity:    sweet.Quantity,
		Description: sweet.Description,
		CreatedBy:   sweet.CreatedByID,
		CreatedAt:   sweet.CreatedAt,
		UpdatedAt:   sweet.UpdatedAt,
	}
	if sweet.CreatedBy != nil {
		res.Owner = &OwnerSummary{
			ID:    sweet.CreatedBy.ID,
			Name:  sweet.CreatedBy.Name,
			Email: sweet.CreatedBy.Email,
		}
	}
	return res
}

func NewSweetResponses(sweets []models.Sweet) []SweetResponse {
	res := make([]SweetResponse, 0, len(sweets))
	for i := range sweets {
		res = append(res, NewSweetResponse(&sweets[i]))
	}
	return res
}
