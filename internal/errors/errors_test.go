package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	wrapped := Wrapf(ErrNotFound, "blob %s", "input.json")

	require.Error(t, wrapped)
	assert.Contains(t, wrapped.Error(), "blob input.json")
	assert.True(t, IsNotFound(wrapped))
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(New("other")))
	assert.True(t, IsNotFound(ErrNotFound))
}

func TestNewInvalidConfig(t *testing.T) {
	err := NewInvalidConfig("%s is required", "INPUT_BLOB_NAME")

	assert.True(t, Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "INPUT_BLOB_NAME is required")
}

func TestWithHint(t *testing.T) {
	err := WithHint(New("no input"), "set INPUT_BLOB_NAME")

	assert.Equal(t, []string{"set INPUT_BLOB_NAME"}, GetAllHints(err))
}
