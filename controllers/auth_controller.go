package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sweetshop/constants"
	"sweetshop/dto"
	"sweetshop/services"
)

type IAuthController interface {
	Register(ctx *gin.Context)
	Login(ctx *gin.Context)
	Logout(ctx *gin.Context)
	Me(ctx *gin.Context)
}

type AuthController struct {
	service services.IAuthService
	logger  *zap.Logger
}

func NewAuthController(service services.IAuthService, logger *zap.Logger) IAuthController {
	return &AuthController{service: service, logger: logger}
}

func (c *AuthController) Register(ctx *gin.Context) {
	var input dto.RegisterInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondError(ctx, c.logger, services.FromBindingError(err))
		return
	}

	user, err := c.service.Register(ctx.Request.Context(), input)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	token, err := c.service.IssueToken(user)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.AuthResponse{
		Success: true,
		Token:   token,
		User:    dto.NewUserResponse(user),
	})
}

func (c *AuthController) Login(ctx *gin.Context) {
	var input dto.LoginInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail(constants.ErrMissingCredentials))
		return
	}

	user, err := c.service.Login(ctx.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	token, err := c.service.IssueToken(user)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.AuthResponse{
		Success: true,
		Token:   token,
		User:    dto.NewUserResponse(user),
	})
}

func (c *AuthController) Logout(ctx *gin.Context) {
	token := ctx.GetString(constants.ContextTokenKey)
	if err := c.service.Logout(ctx.Request.Context(), token); err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OKWithMessage(nil, constants.MsgLoggedOut))
}

func (c *AuthController) Me(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(constants.ErrNotAuthorized))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(dto.NewUserResponse(user)))
}
