package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"usersvc/config"
	logs "usersvc/internal/infra/log"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func sqlFn() (string, int64) {
	return "SELECT * FROM users", 1
}

func TestGormSlogLogger_UsesRequestLogger(t *testing.T) {
	var base, scoped bytes.Buffer
	l := newGormSlogLogger(slog.New(slog.NewTextHandler(&base, nil)), &config.Config{})

	reqLogger := slog.New(slog.NewTextHandler(&scoped, nil)).With("request_id", "req-1")
	ctx := logs.WithContext(context.Background(), reqLogger)

	l.Trace(ctx, time.Now(), sqlFn, errors.New("boom"))

	assert.Empty(t, base.String())
	assert.Contains(t, scoped.String(), "request_id=req-1")
	assert.Contains(t, scoped.String(), "query failed")
}

func TestGormSlogLogger_Trace(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		begin   time.Time
		err     error
		wantMsg string
	}{
		{name: "error", begin: time.Now(), err: errors.New("boom"), wantMsg: "query failed"},
		{name: "record not found is silent", begin: time.Now(), err: gorm.ErrRecordNotFound},
		{name: "slow", begin: time.Now().Add(-time.Second), wantMsg: "slow query"},
		{name: "fast query hidden without debug", begin: time.Now()},
		{name: "fast query in debug", debug: true, begin: time.Now(), wantMsg: "msg=query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &config.Config{}
			cfg.Env.Debug = tt.debug
			l := newGormSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), cfg)

			l.Trace(context.Background(), tt.begin, sqlFn, tt.err)

			if tt.wantMsg == "" {
				assert.Empty(t, buf.String())

				return
			}
			assert.Contains(t, buf.String(), tt.wantMsg)
		})
	}
}

func TestGormSlogLogger_Silent(t *testing.T) {
	var buf bytes.Buffer
	l := newGormSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)), nil).LogMode(logger.Silent)

	l.Trace(context.Background(), time.Now(), sqlFn, errors.New("boom"))
	l.Error(context.Background(), "boom %d", 1)

	assert.Empty(t, buf.String())
}
