package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentityByCode(t *testing.T) {
	clone := Clone(ErrStatsLoad, "stats load failed: upstream said no")
	assert.True(t, errors.Is(clone, ErrStatsLoad))
	assert.False(t, errors.Is(clone, ErrCasesLoad))
	assert.Equal(t, http.StatusBadGateway, clone.Status)
	assert.Equal(t, "stats load failed", ErrStatsLoad.Message)
}

func TestWithCauseUnwraps(t *testing.T) {
	cause := fmt.Errorf("dial tcp: timeout")
	err := WithCause(ErrCasesLoad, cause, "")
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrCasesLoad)
	assert.Contains(t, err.Error(), "dial tcp: timeout")
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("context: %w", ErrNotLoaded)
	assert.Equal(t, ErrNotLoaded.Code, FromError(wrapped).Code)
}
