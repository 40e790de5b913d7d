package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/stockreport/internal/common"
	tcommon "github.com/bobmcallan/stockreport/tests/common"
)

// testStorageConfig starts the shared SurrealDB container and returns a
// config selecting a unique database per test for isolation.
func testStorageConfig(t *testing.T) *common.StorageConfig {
	t.Helper()

	sc := tcommon.StartSurrealDB(t)

	// SurrealDB rejects "/" in database names, which subtests produce.
	sanitized := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return &common.StorageConfig{
		Address:   sc.Address(),
		Namespace: "stockreport_test",
		Database:  fmt.Sprintf("t_%s_%d", sanitized, time.Now().UnixNano()%100000),
		Username:  "root",
		Password:  "root",
	}
}

// testManager connects a Manager to a fresh database.
func testManager(t *testing.T) *Manager {
	t.Helper()

	mgr, err := NewManager(context.Background(), testLogger(), testStorageConfig(t))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() {
		mgr.Close()
	})
	return mgr
}

// testLogger returns a silent logger for tests.
func testLogger() *common.Logger {
	return common.NewSilentLogger()
}
