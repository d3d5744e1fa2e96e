package apperrors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the envelope every error reply uses.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *AppError `json:"error"`
}

// GinErrorHandler translates errors into Gin responses.
type GinErrorHandler struct {
	// Debug exposes wrapped error details in responses. Never enable in production.
	Debug bool
}

func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	if h.Debug && appErr.Err != nil && appErr.Details == nil {
		appErr = appErr.WithDetails(appErr.Err.Error())
	}

	httpCode := appErr.HTTPCode
	if httpCode == 0 {
		httpCode = http.StatusInternalServerError
	}

	c.AbortWithStatusJSON(httpCode, ErrorResponse{Success: false, Error: appErr})
}

var defaultHandler = &GinErrorHandler{}

// SetDebug toggles detail exposure for the package-level handler.
func SetDebug(debug bool) {
	defaultHandler.Debug = debug
}

// HandleError writes err to the response using the package-level handler.
func HandleError(c *gin.Context, err error) {
	defaultHandler.HandleGinError(c, err)
}
