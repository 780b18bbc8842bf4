package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  string
		want ErrorType
	}{
		{"dial tcp: connection refused", ConnectionErrorType},
		{"no route to host", ConnectionErrorType},
		{"SSH handshake failed for web:22: unexpected EOF", ConnectionErrorType},
		{"ssh: handshake failed: ssh: unable to authenticate", AuthenticationErrorType},
		{"dial tcp: i/o timeout", TimeoutErrorType},
		{"context deadline exceeded", TimeoutErrorType},
		{"bash: frobnicate: command not found", ExecutionErrorType},
		{"exec failed: exec request denied", ExecutionErrorType},
		{"something else entirely", UnknownErrorType},
	}

	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			classified := Classify(errors.New(tt.err))
			require.NotNil(t, classified)
			assert.Equal(t, tt.want, classified.Type, "classified as %s", classified.Type)
		})
	}
}

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestClassifiedErrorUnwrap(t *testing.T) {
	base := errors.New("connection refused")
	classified := Classify(fmt.Errorf("connect failed: %w", base))
	assert.Equal(t, ConnectionErrorType, classified.Type)
	assert.ErrorIs(t, classified, base)
}

func TestCollectorSummary(t *testing.T) {
	c := NewCollector()
	assert.Equal(t, "no errors", c.Summary())

	c.Add(errors.New("connection refused"))
	c.Add(errors.New("connection reset"))
	c.Add(errors.New("i/o timeout"))
	c.Add(nil)

	assert.Equal(t, 3, c.Count())
	assert.Equal(t, 2, c.CountByType(ConnectionErrorType))
	assert.Equal(t, 1, c.CountByType(TimeoutErrorType))
	assert.Equal(t, "total: 3 errors (2 connection, 1 timeout)", c.Summary())
}
