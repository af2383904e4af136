package helper

import (
	"context"
	"testing"

	"github.com/rahmatrdn/go-query-insight/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDeadline(t *testing.T) {
	assert.NoError(t, CheckDeadline(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := CheckDeadline(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidatorRawQueryRecord(t *testing.T) {
	v := NewValidator()

	assert.Nil(t, v.Struct(entity.RawQueryRecord{SQLText: "SELECT 1", DurationMs: 0}))

	msgs := v.Struct(entity.RawQueryRecord{SQLText: "SELECT 1", DurationMs: -5})
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "duration_ms")

	err := v.Validate(entity.RawQueryRecord{DurationMs: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Messages, 1)
}

func TestValidatorConnection(t *testing.T) {
	v := NewValidator()

	msgs := v.Struct(entity.CHConnection{Port: 70000, Protocol: "grpc"})
	assert.Len(t, msgs, 4)

	assert.Nil(t, v.Struct(entity.CHConnection{Name: "local", Host: "localhost", Port: 9000, Protocol: "native"}))
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		logger, err := NewLogger(env)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}
