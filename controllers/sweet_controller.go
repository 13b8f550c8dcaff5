package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sweetshop/constants"
	"sweetshop/dto"
	"sweetshop/services"
)

type ISweetController interface {
	FindAll(ctx *gin.Context)
	FindById(ctx *gin.Context)
	Search(ctx *gin.Context)
	Create(ctx *gin.Context)
	Update(ctx *gin.Context)
	Delete(ctx *gin.Context)
}

type SweetController struct {
	service services.ISweetService
	logger  *zap.Logger
}

func NewSweetController(service services.ISweetService, logger *zap.Logger) ISweetController {
	return &SweetController{service: service, logger: logger}
}

func (c *SweetController) FindAll(ctx *gin.Context) {
	var page dto.PageQuery
	if err := ctx.ShouldBindQuery(&page); err != nil {
		respondError(ctx, c.logger, services.FromBindingError(err))
		return
	}

	sweets, err := c.service.FindAll(ctx.Request.Context(), page)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.List(dto.NewSweetResponses(sweets), len(sweets)))
}

func (c *SweetController) FindById(ctx *gin.Context) {
	sweet, err := c.service.FindById(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(dto.NewSweetResponse(sweet)))
}

func (c *SweetController) Search(ctx *gin.Context) {
	var query dto.SearchSweetsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		respondError(ctx, c.logger, services.FromBindingError(err))
		return
	}

	sweets, err := c.service.Search(ctx.Request.Context(), query)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.List(dto.NewSweetResponses(sweets), len(sweets)))
}

func (c *SweetController) Create(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(constants.ErrNotAuthorized))
		return
	}

	var input dto.CreateSweetInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondError(ctx, c.logger, services.FromBindingError(err))
		return
	}

	newSweet, err := c.service.Create(ctx.Request.Context(), input, user.ID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.OK(dto.NewSweetResponse(newSweet)))
}

func (c *SweetController) Update(ctx *gin.Context) {
	var input dto.UpdateSweetInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondError(ctx, c.logger, services.FromBindingError(err))
		return
	}

	updatedSweet, err := c.service.Update(ctx.Request.Context(), ctx.Param("id"), input)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(dto.NewSweetResponse(updatedSweet)))
}

func (c *SweetController) Delete(ctx *gin.Context) {
	if err := c.service.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OKWithMessage(nil, constants.MsgSweetDeleted))
}
