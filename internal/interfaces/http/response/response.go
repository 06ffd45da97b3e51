package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "scholarship-fund.backend/internal/domain/errors"
	"scholarship-fund.backend/pkg/utils"
	"scholarship-fund.backend/pkg/validation"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Page sends a list with pagination metadata
func Page(c *gin.Context, status int, items interface{}, meta utils.PaginationMeta) {
	c.JSON(status, gin.H{
		"items": items,
		"meta":  meta,
	})
}

// Error maps err onto its status and stable code
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromError(err)
	if appErr == nil {
		appErr = domainerrors.InternalServerError("unknown error")
	}

	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

// ValidationError sends a 400 listing each failed field
func ValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    domainerrors.CodeInvalidInput,
		"message": "validation failed",
		"fields":  validation.ToFieldErrors(err),
	})
}

// ErrorWithError sends an error response with a specific status and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
