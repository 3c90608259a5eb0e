package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncErrorFormat(t *testing.T) {
	cause := fmt.Errorf("connection refused")

	tests := []struct {
		name string
		err  *SyncError
		want string
	}{
		{
			name: "op only",
			err:  New(OpPull, cause),
			want: "pull operation failed: connection refused",
		},
		{
			name: "op and component",
			err:  NewWithComponent(OpWrite, "cache-store", cause),
			want: "write operation failed in cache-store component: connection refused",
		},
		{
			name: "op, component and code",
			err:  NewNetworkError(OpQuery, "rest-remote", cause),
			want: "query operation failed in rest-remote component [NETWORK_FAILURE]: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError(OpWrite, "kv/filekv", cause)

	require.ErrorIs(t, err, cause)

	var syncErr *SyncError
	require.ErrorAs(t, fmt.Errorf("outer: %w", err), &syncErr)
	assert.Equal(t, OpWrite, syncErr.Op)
	assert.Equal(t, CodeStorageFailure, syncErr.Code)
}

func TestIsRetryable(t *testing.T) {
	cause := errors.New("boom")

	assert.True(t, IsRetryable(NewNetworkError(OpUpsert, "rest-remote", cause)))
	assert.True(t, IsRetryable(NewStorageError(OpWrite, "kv/sqlitekv", cause)))
	assert.False(t, IsRetryable(NewValidationError(OpValidate, cause)))
	assert.False(t, IsRetryable(NewCorruptRecordError(OpRead, "cache-store", cause)))
	assert.False(t, IsRetryable(cause))
	assert.False(t, IsRetryable(nil))
}

func TestIsRetryableWrapped(t *testing.T) {
	inner := NewNetworkError(OpPull, "rest-remote", errors.New("timeout"))
	wrapped := fmt.Errorf("sync pass: %w", inner)

	assert.True(t, IsRetryable(wrapped))
}

func TestIsCode(t *testing.T) {
	err := NewCorruptRecordError(OpRead, "cache-store", errors.New("bad json"))

	assert.True(t, IsCode(err, CodeCorruptRecord))
	assert.False(t, IsCode(err, CodeNetworkFailure))
	assert.False(t, IsCode(errors.New("plain"), CodeCorruptRecord))
}

func TestWrapHelpersPreserveNil(t *testing.T) {
	assert.NoError(t, WrapOpComponent(nil, OpSync, "service"))
	assert.NoError(t, WrapStorage(nil, OpWrite, "kv/memkv"))

	err := WrapStorage(errors.New("locked"), OpWrite, "kv/sqlitekv")
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeStorageFailure))
}
