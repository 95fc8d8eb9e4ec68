package internal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/followup/internal/testutil"
)

func testConfig(t *testing.T, dataPath string) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.App.LogLevel = 12 // above error: silence
	cfg.Data.Path = dataPath
	return cfg
}

func TestOpenStore_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "projects.json")
	store, err := openStore(context.Background(), testConfig(t, path), testutil.Logger())
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	db, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(db.Projects) != 0 || db.NextID != 1 {
		t.Errorf("new database = %+v", db)
	}
}

func TestOpenStore_MigratesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.json")
	legacy := `{"projects":[{"id":"2","name":"old","tasks":[{"id":"1","title":"t","status":"Done"}]}]}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := openStore(context.Background(), testConfig(t, path), testutil.Logger())
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	db, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := db.Projects[0].Tasks[0].ID; got != "2-1" {
		t.Errorf("task id = %q, want 2-1", got)
	}
	if db.NextID != 3 {
		t.Errorf("next_id = %d, want 3", db.NextID)
	}
}

func TestRunMigrate_Report(t *testing.T) {
	path, store := testutil.TestStore(t)
	raw := []byte(`{"projects":[{"id":"5","name":"x","tasks":[{"id":"1","title":"a"},{"id":"2","title":"b"}]}],"next_id":6}`)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	res, err := RunMigrate(context.Background(), WithConfig(testConfig(t, path)), WithOutput(&out))
	if err != nil {
		t.Fatalf("RunMigrate: %v", err)
	}
	if res.Rewritten != 2 || !res.Saved {
		t.Errorf("result = %+v", res)
	}
	if !strings.Contains(out.String(), "2 task id(s) rewritten") {
		t.Errorf("report = %q", out.String())
	}

	db, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if db.Projects[0].Tasks[1].ID != "5-2" {
		t.Errorf("task id = %q", db.Projects[0].Tasks[1].ID)
	}
}

func TestRunMigrate_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := RunMigrate(context.Background(), WithConfig(testConfig(t, path)), WithOutput(&bytes.Buffer{})); err == nil {
		t.Fatal("expected error for corrupt data file")
	}
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestRun_StopsOnCancelAndOpensBrowser(t *testing.T) {
	var mu sync.Mutex
	var opened []string
	orig := openBrowser
	openBrowser = func(url string) error {
		mu.Lock()
		opened = append(opened, url)
		mu.Unlock()
		return nil
	}
	t.Cleanup(func() { openBrowser = orig })

	cfg := testConfig(t, filepath.Join(t.TempDir(), "projects.json"))
	cfg.App.HTTP.Port = 0
	cfg.App.OpenBrowser = true
	cfg.App.BrowserDelay = 10 * time.Millisecond
	cfg.Activity.Path = filepath.Join(t.TempDir(), "activity.db")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, WithConfig(cfg)) }()

	time.Sleep(300 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(opened) != 1 || opened[0] != "http://localhost:0" {
		t.Errorf("opened = %v", opened)
	}
	if _, err := os.Stat(cfg.Data.Path); err != nil {
		t.Errorf("data file not created: %v", err)
	}
}
