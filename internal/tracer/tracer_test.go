package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/inkcalc/internal/config"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.TracingConfig
		wantErr bool
	}{
		{name: "disabled", cfg: config.TracingConfig{Enabled: false, Exporter: "stdout"}},
		{name: "noop exporter", cfg: config.TracingConfig{Enabled: true, Exporter: "noop"}},
		{name: "stdout exporter", cfg: config.TracingConfig{Enabled: true, Exporter: "stdout"}},
		{name: "unknown exporter", cfg: config.TracingConfig{Enabled: true, Exporter: "jaeger"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			shutdown, err := Setup(ctx, tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, shutdown(ctx))
		})
	}
}

func TestStartSpan(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TracingConfig{})
	require.NoError(t, err)
	defer shutdown(context.Background())

	ctx, span := StartSpan(context.Background(), "test")
	assert.NotNil(t, ctx)
	RecordError(span, errors.New("boom"))
	SetOK(span)
	span.End()
}
