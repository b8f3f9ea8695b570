package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	err := New(KindConflict, "some products are unavailable")
	assert.Equal(t, KindConflict, KindOf(err))
	assert.True(t, Is(err, KindConflict))
	assert.False(t, Is(err, KindNotFound))
}

func TestKindOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("plain error")))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := New(KindNotFound, "user not found")
	wrapped := fmt.Errorf("failed to resolve caller: %w", inner)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindUnavailable, "catalog service unreachable", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "unavailable")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDetail(t *testing.T) {
	detail := []string{"p1", "p2"}
	err := New(KindConflict, "unavailable").WithDetail(detail)

	got, ok := DetailOf(err).([]string)
	require.True(t, ok)
	assert.Equal(t, detail, got)

	assert.Nil(t, DetailOf(errors.New("plain")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "invalid_request", KindInvalidRequest.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Equal(t, "unauthorized", KindUnauthorized.String())
	assert.Equal(t, "forbidden", KindForbidden.String())
	assert.Equal(t, "unavailable", KindUnavailable.String())
	assert.Equal(t, "internal", KindInternal.String())
}
