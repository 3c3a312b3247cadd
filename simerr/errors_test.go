package simerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(TaskFailed, "tick failed", cause).WithContext("batch", 2)

	assert.Equal(t, "[task_failed] tick failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 2, err.Context["batch"])
	assert.NotEmpty(t, err.StackTrace)
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(IllegalPhase, "step while planning"))

	assert.True(t, IsCode(err, IllegalPhase))
	assert.False(t, IsCode(err, TaskFailed))
	assert.Equal(t, IllegalPhase, CodeOf(err))
	assert.Equal(t, Unknown, CodeOf(errors.New("plain")))
	assert.False(t, IsCode(nil, IllegalPhase))
}

func TestCode_String(t *testing.T) {
	assert.Equal(t, "clone_order", CloneOrder.String())
	assert.Equal(t, "unknown", Code(999).String())
}
