package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Err struct {
	StatusCode int    `json:"-"`
	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
}

func RenderErr(ctx *gin.Context, e *Err) {
	ctx.AbortWithStatusJSON(e.StatusCode, e)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		StatusCode: http.StatusBadRequest,
		StatusText: "Bad request.",
		ErrorText:  err.Error(),
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		StatusText: "Wrong credentials.",
		ErrorText:  err.Error(),
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		StatusCode: http.StatusForbidden,
		StatusText: "Permission denied.",
		ErrorText:  err.Error(),
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	return &Err{
		StatusCode: http.StatusNotFound,
		StatusText: "Resource not found.",
		ErrorText:  fmt.Sprintf("%v with %v (%v) is not found", resource, key, value),
	}
}

// ErrConflict reports a business-rule conflict that may clear up later, such
// as a full event or exhausted stock.
func ErrConflict(err error) *Err {
	return &Err{
		StatusCode: http.StatusConflict,
		StatusText: "Conflict.",
		ErrorText:  err.Error(),
	}
}

func ErrInternalServerError(err error) *Err {
	zap.L().Error("internal server error", zap.Error(err))

	return &Err{
		StatusCode: http.StatusInternalServerError,
		StatusText: "Internal server error.",
	}
}
