package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/config"
)

func TestOpen_Drivers(t *testing.T) {
	testCases := map[string]struct {
		driver  string
		dsn     string
		wantErr string
	}{
		"should open sqlite": {driver: "sqlite", dsn: "file::memory:"},
		"should reject unknown drivers": {
			driver:  "oracle",
			dsn:     "x",
			wantErr: "unsupported database driver: oracle",
		},
		"should reject empty dsn": {
			driver:  "sqlite",
			wantErr: "empty DSN",
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			db, err := Open(config.Database{Driver: tc.driver, MaxOpenConns: 1}, tc.dsn)
			if tc.wantErr != "" {
				assert.EqualError(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			defer db.Close()
			assert.NoError(t, db.PingContext(context.Background()))
		})
	}
}

func TestNew_LifecycleAndSlowQueries(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	lc := fxtest.NewLifecycle(t)
	cfg := config.Config{Database: config.Database{
		Driver:             "sqlite",
		WriterDSN:          "file::memory:",
		ReaderDSN:          "file::memory:",
		MaxOpenConns:       1,
		SlowQueryThreshold: time.Nanosecond,
	}}

	conns, err := New(lc, cfg, zap.New(core))
	require.NoError(t, err)
	assert.Same(t, conns.Writer, conns.Reader)

	lc.RequireStart()
	_, err = conns.Writer.NewRaw("SELECT 1").Exec(context.Background())
	require.NoError(t, err)

	_, err = conns.Writer.NewRaw("SELECT * FROM missing_table").Exec(context.Background())
	require.Error(t, err)
	lc.RequireStop()

	assert.NotEmpty(t, logs.FilterMessage("slow query").All())
	assert.Len(t, logs.FilterMessage("query failed").All(), 1)
}
