package logger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitAndContextLogging(t *testing.T) {
	Init("development")
	require.NotNil(t, GetLogger())

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithAccountID(ctx, "acc-1")
	require.NotNil(t, WithContext(ctx))

	Info(ctx, "info")
	Debug(ctx, "debug")
	Warn(ctx, "warn")
	Error(ctx, "error")
	LogRequest(ctx, "GET", "/health", 200, 10*time.Millisecond, "127.0.0.1")
	LogRequest(ctx, "GET", "/boom", 500, 10*time.Millisecond, "127.0.0.1")
}

func TestWithContextNil(t *testing.T) {
	Init("development")
	//nolint:staticcheck // nil context is handled explicitly
	assert.NotNil(t, WithContext(nil))
}

func TestWithContext_AddsCorrelationFields(t *testing.T) {
	orig := log
	t.Cleanup(func() { log = orig })

	core, logs := observer.New(zapcore.DebugLevel)
	log = zap.New(core)

	ctx := WithAccountID(WithRequestID(context.Background(), "req-42"), "acc-7")
	Info(ctx, "payment confirmed")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "acc-7", fields["account_id"])
}

func TestInit_ProductionAndSetLevel(t *testing.T) {
	log = zap.NewNop()
	once = sync.Once{}
	atom = zap.AtomicLevel{}

	SetLevel(zapcore.DebugLevel)

	Init("production")
	require.NotNil(t, GetLogger())
	SetLevel(zapcore.WarnLevel)
	assert.Equal(t, zapcore.WarnLevel, atom.Level())
	assert.NotNil(t, WithContext(context.Background()))
}
