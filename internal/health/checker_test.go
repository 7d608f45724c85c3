package health

import (
	"context"
	"testing"

	"github.com/veloce-app/veloce/internal/infra/sqlite"
)

func TestChecker_AllHealthy(t *testing.T) {
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	c := NewChecker(db, dir)
	c.runAll(context.Background())

	if !c.IsHealthy() {
		t.Errorf("expected healthy, got %+v", c.Statuses())
	}
	statuses := c.Statuses()
	if len(statuses) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(statuses))
	}
	for _, s := range statuses {
		if !s.Healthy {
			t.Errorf("check %s unhealthy: %s", s.Name, s.Error)
		}
	}
}

func TestChecker_MissingDataDir(t *testing.T) {
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	c := NewChecker(db, dir+"/does-not-exist")
	c.runAll(context.Background())

	if c.IsHealthy() {
		t.Error("expected unhealthy with missing data dir")
	}
}
