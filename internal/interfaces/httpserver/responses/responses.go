// Package responses maps domain errors onto the HTTP error envelope.
package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"homehub/assistant-api/internal/utils/platformerrors"
)

// ErrorResponse is the error envelope returned to clients. Code is the
// stable identifier of the raise site.
type ErrorResponse struct {
	Code      string `json:"code,omitempty"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// HandleError maps a domain error to the HTTP response and aborts the
// request.
func HandleError(reqCtx *gin.Context, err error, message string) {
	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		statusCode := platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType())

		reqCtx.AbortWithStatusJSON(statusCode, ErrorResponse{
			Code:      domainErr.GetUUID(),
			Error:     message,
			RequestID: domainErr.GetRequestID(),
		})
		return
	}

	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error: message,
	})
}

// HandleNewError raises a typed error at the route layer and responds with
// it.
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, uuid string) {
	ctx := reqCtx.Request.Context()
	err := platformerrors.NewError(ctx, platformerrors.LayerRoute, errorType, message, nil, uuid)

	statusCode := platformerrors.ErrorTypeToHTTPStatus(err.GetErrorType())

	reqCtx.AbortWithStatusJSON(statusCode, ErrorResponse{
		Code:      err.GetUUID(),
		Error:     message,
		RequestID: err.GetRequestID(),
	})
}
