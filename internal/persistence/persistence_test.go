package persistence

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/contest-provisioner/internal/config"
)

func TestDisabledBackends(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	pg, err := NewPostgres(ctx, config.PostgresConfig{}, logger)
	if err != nil {
		t.Fatalf("NewPostgres() error = %v", err)
	}
	if pg.Enabled() || pg.PoolHandle() != nil {
		t.Error("postgres without DSN should be disabled")
	}
	pg.Close()
	if err := RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
		t.Errorf("RunMigrations() without pool error = %v", err)
	}

	r := NewRedis(config.RedisConfig{}, logger)
	if r.Enabled() {
		t.Error("redis without address should be disabled")
	}
	if err := r.Ping(ctx); err == nil {
		t.Error("Ping() on disabled redis should fail")
	}
	release, err := r.AcquireBatchLock(ctx, "3", "run-1", 0)
	if err != nil {
		t.Fatalf("AcquireBatchLock() error = %v", err)
	}
	release(ctx)
	release(ctx)
	r.Close()
}

func TestEmbeddedMigrations(t *testing.T) {
	data, err := fs.ReadFile(migrationFS, migrationsDir+"/001_provision_history.sql")
	if err != nil {
		t.Fatalf("migration not embedded: %v", err)
	}
	sql := string(data)
	for _, table := range []string{"provision_runs", "provision_outcomes"} {
		if !strings.Contains(sql, table) {
			t.Errorf("migration does not define %s", table)
		}
	}
}
