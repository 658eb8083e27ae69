package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodeMapping(t *testing.T) {
	cause := stderrors.New("upstream")
	tests := map[string]struct {
		err    error
		status int
		code   string
	}{
		"provider":   {NewProviderError("text down", "text", cause), http.StatusServiceUnavailable, CodeProviderUnavailable},
		"malformed":  {NewMalformedResponseError("bad json", "text", cause), http.StatusBadGateway, CodeMalformedResponse},
		"validation": {NewValidationError("Business name is required", "name", ""), http.StatusBadRequest, CodeValidation},
		"quota":      {NewQuotaExceededError("youtube", 10000, 10000, 100, time.Now()), http.StatusTooManyRequests, CodeQuotaExceeded},
		"store":      {NewStoreError("insert failed", "insert", cause), http.StatusInternalServerError, CodeDatabase},
		"plain":      {cause, http.StatusInternalServerError, CodeAppError},
		"wrapped":    {fmt.Errorf("synthesize: %w", NewProviderError("text down", "text", cause)), http.StatusServiceUnavailable, CodeProviderUnavailable},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.status, StatusCode(tt.err))
			assert.Equal(t, tt.code, Code(tt.err))
		})
	}
}

func TestKindPredicates(t *testing.T) {
	provider := fmt.Errorf("wrap: %w", NewProviderError("down", "video", nil))
	malformed := NewMalformedResponseError("bad", "text", nil)
	cacheErr := NewCacheError("redis down", "get", "business:x", nil)

	assert.True(t, IsProviderUnavailable(provider))
	assert.False(t, IsMalformedResponse(provider))
	assert.True(t, IsMalformedResponse(malformed))
	assert.True(t, IsCacheUnavailable(cacheErr))
	assert.False(t, IsValidation(cacheErr))
}

func TestErrorMessages(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := NewProviderError("text provider unavailable", "text", cause)

	assert.Equal(t, "text provider unavailable: dial tcp: refused", err.Error())
	assert.Equal(t, "text provider unavailable", Message(err, "fallback"))
	assert.Equal(t, "fallback", Message(cause, "fallback"))
	assert.ErrorIs(t, err, cause)
}
