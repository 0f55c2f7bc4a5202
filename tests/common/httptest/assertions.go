//go:build unit || e2e

package httptest

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"install-scheduler/internal/handler/httperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertSuccessResponse checks the status and, for 2xx with a target, decodes the body into it.
func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target any) {
	t.Helper()

	if !assert.Equal(t, expectedStatus, w.Code, "body: %s", w.Body.String()) {
		return
	}
	if target == nil || w.Code < 200 || w.Code >= 300 {
		return
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "body: %s", w.Body.String())
}

// AssertErrorResponse checks the status and that the message contains msg; empty msg skips the message check.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, msg string) httperr.Body {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code, "body: %s", w.Body.String())
	body := decodeError(t, w)
	assert.NotEmpty(t, body.Code, "error code missing")
	if msg != "" {
		assert.Contains(t, body.Message, msg)
	}
	return body
}

// AssertErrorCode checks the status and the exact machine-readable code.
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, code string) httperr.Body {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code, "body: %s", w.Body.String())
	body := decodeError(t, w)
	assert.Equal(t, code, body.Code)
	return body
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httperr.Body {
	t.Helper()
	var resp httperr.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp.Error
}
