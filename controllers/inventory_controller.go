package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sweetshop/constants"
	"sweetshop/dto"
	"sweetshop/services"
)

type IInventoryController interface {
	Purchase(ctx *gin.Context)
	Restock(ctx *gin.Context)
	CheckStock(ctx *gin.Context)
	LowStock(ctx *gin.Context)
	Statistics(ctx *gin.Context)
}

type InventoryController struct {
	service services.IInventoryService
	logger  *zap.Logger
}

func NewInventoryController(service services.IInventoryService, logger *zap.Logger) IInventoryController {
	return &InventoryController{service: service, logger: logger}
}

func (c *InventoryController) Purchase(ctx *gin.Context) {
	var input dto.StockInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail(constants.ErrInvalidQuantity))
		return
	}

	sweet, err := c.service.Purchase(ctx.Request.Context(), ctx.Param("id"), input.Quantity)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OKWithMessage(dto.NewSweetResponse(sweet), constants.MsgPurchaseSuccessful))
}

func (c *InventoryController) Restock(ctx *gin.Context) {
	var input dto.StockInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail(constants.ErrInvalidQuantity))
		return
	}

	sweet, err := c.service.Restock(ctx.Request.Context(), ctx.Param("id"), input.Quantity)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OKWithMessage(dto.NewSweetResponse(sweet), constants.MsgRestockSuccessful))
}

func (c *InventoryController) CheckStock(ctx *gin.Context) {
	stock, err := c.service.CheckStock(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(stock))
}

func (c *InventoryController) LowStock(ctx *gin.Context) {
	var query dto.LowStockQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		respondError(ctx, c.logger, services.FromBindingError(err))
		return
	}

	sweets, err := c.service.LowStockItems(ctx.Request.Context(), query.Threshold)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.List(dto.NewSweetResponses(sweets), len(sweets)))
}

func (c *InventoryController) Statistics(ctx *gin.Context) {
	stats, err := c.service.Statistics(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(stats))
}
