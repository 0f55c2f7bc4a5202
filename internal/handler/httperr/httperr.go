package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Generic codes used when no domain-specific code applies.
const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeCancelled    = "request_cancelled"
	CodeInternal     = "internal_error"
)

type Body struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

type Response struct {
	Status int  `json:"-"`
	Error  Body `json:"error"`
	Detail any  `json:"detail,omitempty"`
}

func New(status int, code, msg string) Response {
	if code == "" {
		code = CodeForStatus(status)
	}
	return Response{Status: status, Error: Body{Code: code, Message: msg}}
}

func Internal() Response {
	return New(http.StatusInternalServerError, CodeInternal, "Internal server error")
}

// CodeForStatus is the fallback code for handlers that only know the status.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusServiceUnavailable:
		return CodeCancelled
	default:
		return CodeInternal
	}
}

// AbortWithError derives the code from status. The original error is kept on c.Errors for logging.
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	resp := New(status, "", msg)
	resp.Detail = detail
	Abort(c, err, resp)
}

func Abort(c *gin.Context, err error, resp Response) {
	if err == nil {
		panic("httperr.Abort: err cannot be nil")
	}
	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(resp.Status, resp)
}
