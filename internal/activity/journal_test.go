package activity

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/starford/followup/internal/projectservice"
)

func testJournal(t *testing.T) *Journal {
	t.Helper()
	f, err := os.CreateTemp("", "followup-activity-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	j, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestSchemaCreation(t *testing.T) {
	j := testJournal(t)
	var count int
	if err := j.conn.QueryRow(`SELECT count(*) FROM activity`).Scan(&count); err != nil {
		t.Fatalf("activity table missing: %v", err)
	}
}

func TestRecordAndRecent(t *testing.T) {
	j := testJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i, kind := range []string{"project.created", "task.created", "task.updated"} {
		if err := j.Record(ctx, Entry{At: base.Add(time.Duration(i) * time.Minute), Kind: kind, ProjectID: "1"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	_ = j.Record(ctx, Entry{At: base.Add(10 * time.Minute), Kind: "project.created", ProjectID: "2"})

	all, err := j.Recent(ctx, "", 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("len = %d, want 4", len(all))
	}
	if all[0].ProjectID != "2" {
		t.Errorf("newest entry = %+v, want project 2", all[0])
	}
	if all[0].ID == "" {
		t.Error("ID should be generated")
	}

	limited, err := j.Recent(ctx, "1", 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("len = %d, want 2", len(limited))
	}
	if limited[0].Kind != "task.updated" || limited[1].Kind != "task.created" {
		t.Errorf("order = %s, %s", limited[0].Kind, limited[1].Kind)
	}
}

func TestListenerRecordsEvents(t *testing.T) {
	j := testJournal(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	l := j.Listener(logger)
	l.OnChange(ctx, projectservice.Event{Kind: projectservice.EventTaskCreated, ProjectID: "3", TaskID: "3-1", Detail: "write docs"})

	got, err := j.Recent(ctx, "3", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].TaskID != "3-1" || got[0].Detail != "write docs" {
		t.Errorf("got %+v", got)
	}
}
