package response

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/pkg/logger"
	"cardswap.backend/pkg/utils"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Paginated sends a list page with its pagination metadata.
func Paginated(c *gin.Context, status int, key string, items interface{}, meta utils.PaginationMeta) {
	c.JSON(status, gin.H{
		key:          items,
		"pagination": meta,
	})
}

// Error maps err to its stable kind and HTTP status. Internal details are
// logged, never sent.
func Error(c *gin.Context, err error) {
	status := domainerrors.StatusOf(err)
	kind := domainerrors.KindOf(err)

	message := err.Error()
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}
	if kind == domainerrors.KindInternal {
		logger.Error(c.Request.Context(), "Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		message = "internal server error"
	}

	c.JSON(status, gin.H{
		"code":    kind,
		"message": message,
	})
}

// ErrorWithCode sends an error response with a specific status and code
func ErrorWithCode(c *gin.Context, status int, code string, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
