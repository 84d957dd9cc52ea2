package response

import (
	"github.com/gin-gonic/gin"

	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/pkg/utils"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Paginated sends a list response with pagination metadata
func Paginated(c *gin.Context, status int, items interface{}, meta utils.PaginationMeta) {
	c.JSON(status, gin.H{
		"items":      items,
		"pagination": meta,
	})
}

// Error sends an error response
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromError(err)

	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

// ErrorWithError sends an error response with a specific status and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
