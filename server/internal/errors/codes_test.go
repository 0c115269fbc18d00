package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduleError_Error(t *testing.T) {
	err := MalformedTime("25pm")
	assert.Equal(t, `[MALFORMED_TIME] malformed time "25pm"`, err.Error())

	wrapped := OracleUnavailable("travel-time lookup failed", stderrors.New("connection refused"))
	assert.Equal(t, "[ORACLE_UNAVAILABLE] travel-time lookup failed: connection refused", wrapped.Error())
}

func TestScheduleError_Unwrap(t *testing.T) {
	err := ContextCanceled(context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)

	outer := fmt.Errorf("classify: %w", err)
	assert.True(t, IsCode(outer, ErrCodeContextCanceled))
	assert.False(t, IsCode(outer, ErrCodeStoreUnavailable))
}

func TestGetCodeFromError(t *testing.T) {
	assert.Equal(t, ErrCodeStoreUnavailable, GetCodeFromError(StoreUnavailable("down", nil), ErrCodeInvalidArgument))
	assert.Equal(t, ErrCodeInvalidArgument, GetCodeFromError(stderrors.New("plain"), ErrCodeInvalidArgument))
}

func TestScheduleError_WithContext(t *testing.T) {
	err := InvalidArgument("meeting_index out of range").WithContext("meeting_index", 5)
	assert.Equal(t, 5, err.Context["meeting_index"])
}
