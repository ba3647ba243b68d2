package migrations

import (
	"database/sql"
	"strings"
	"testing"

	"engcalc/internal/observability"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRunLogsThroughZap(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := observability.Logger
	observability.Logger = zap.New(core)
	t.Cleanup(func() { observability.Logger = prev })

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	require.NoError(t, Run(db))

	version, err := Version(db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	var applied bool
	for _, entry := range logs.All() {
		if strings.Contains(entry.Message, "00001_create_fan_performance.sql") {
			applied = true
		}
	}
	assert.True(t, applied, "expected migration progress in the zap log, got %v", logs.All())
}
