package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sweetshop/constants"
	"sweetshop/dto"
	"sweetshop/models"
)

// RoleBasedAccessControl 指定されたロールのみアクセスを許可するミドルウェア
// AuthMiddlewareの後に使用することを想定（ctxに"user"が設定されている必要がある）
func RoleBasedAccessControl(logger *zap.Logger, allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.TrimSpace(strings.ToLower(r))] = struct{}{}
	}

	return func(ctx *gin.Context) {
		user, exists := ctx.Get(constants.ContextUserKey)
		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(constants.ErrNotAuthorized))
			return
		}

		userModel, ok := user.(*models.User)
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(constants.ErrNotAuthorized))
			return
		}

		// userModel.Roleはデータベースから取得した最新のロール情報
		userRole := strings.TrimSpace(strings.ToLower(userModel.Role))
		if _, ok := allowed[userRole]; !ok {
			logger.Info("access denied",
				zap.String("user_id", userModel.ID),
				zap.String("role", userModel.Role),
				zap.Strings("required_roles", allowedRoles),
				zap.String("path", ctx.FullPath()))
			ctx.AbortWithStatusJSON(http.StatusForbidden, dto.Fail(constants.ErrForbidden))
			return
		}

		ctx.Next()
	}
}
