// ABOUTME: Tests for the refresh/swap protocol
// ABOUTME: Covers hash no-ops, version bumps, and atomicity under readers
package core

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/arjun/nyaya/internal/index"
	"github.com/arjun/nyaya/internal/models"
)

func testUpdater(t *testing.T) (*Updater, *index.MemoryIndex, *fakeEmbedClient) {
	t.Helper()
	idx := index.NewMemoryIndex(3)
	client := &fakeEmbedClient{}
	policy := ChunkPolicy{TargetSize: 120, Overlap: 20, Boundary: BoundaryChar}
	return NewUpdater(idx, NewEmbedder(client, 64), policy), idx, client
}

func statuteDoc(id, text string) models.SourceDocument {
	return models.SourceDocument{
		ID:       id,
		Origin:   models.OriginStatute,
		Title:    "The " + id + " Act",
		FullText: text,
	}
}

func TestUpdater_FirstIngest(t *testing.T) {
	u, idx, _ := testUpdater(t)

	version, updated, err := u.Refresh(context.Background(), statuteDoc("act-1", strings.Repeat("Section text here. ", 20)))
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if !updated {
		t.Error("first ingest reported as no-op")
	}
	if version < 1 {
		t.Errorf("version = %d, want >= 1", version)
	}

	info, err := idx.Source("act-1")
	if err != nil {
		t.Fatalf("Source() error = %v", err)
	}
	if info == nil {
		t.Fatal("source not registered")
	}
	if info.DocVersion != 1 {
		t.Errorf("doc version = %d, want 1", info.DocVersion)
	}
	if info.ChunkCount == 0 {
		t.Error("no chunks recorded")
	}
}

func TestUpdater_UnchangedContentIsNoOp(t *testing.T) {
	u, _, client := testUpdater(t)
	ctx := context.Background()
	doc := statuteDoc("act-1", strings.Repeat("Stable statutory text. ", 15))

	v1, _, err := u.Refresh(ctx, doc)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	callsAfterFirst := client.calls

	v2, updated, err := u.Refresh(ctx, doc)
	if err != nil {
		t.Fatalf("second Refresh() error = %v", err)
	}
	if updated {
		t.Error("unchanged content reported as updated")
	}
	if v2 != v1 {
		t.Errorf("no-op changed version: %d -> %d", v1, v2)
	}
	if client.calls != callsAfterFirst {
		t.Error("no-op refresh hit the embedding capability")
	}
}

func TestUpdater_ChangedContentBumpsDocVersion(t *testing.T) {
	u, idx, _ := testUpdater(t)
	ctx := context.Background()

	if _, _, err := u.Refresh(ctx, statuteDoc("act-1", strings.Repeat("Old text. ", 20))); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	v2, updated, err := u.Refresh(ctx, statuteDoc("act-1", strings.Repeat("Amended text. ", 20)))
	if err != nil {
		t.Fatalf("second Refresh() error = %v", err)
	}
	if !updated {
		t.Error("changed content reported as no-op")
	}
	if v2 < 2 {
		t.Errorf("index version = %d, want >= 2", v2)
	}

	info, err := idx.Source("act-1")
	if err != nil {
		t.Fatalf("Source() error = %v", err)
	}
	if info.DocVersion != 2 {
		t.Errorf("doc version = %d, want 2", info.DocVersion)
	}
}

func TestUpdater_WhitespaceOnlyChangeIsNoOp(t *testing.T) {
	u, _, _ := testUpdater(t)
	ctx := context.Background()

	if _, _, err := u.Refresh(ctx, statuteDoc("act-1", "The  court   held as follows.")); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	_, updated, err := u.Refresh(ctx, statuteDoc("act-1", "The court held as follows."))
	if err != nil {
		t.Fatalf("second Refresh() error = %v", err)
	}
	if updated {
		t.Error("cleaning-equivalent text reported as updated")
	}
}

func TestUpdater_ExtraMetadataMergedIntoChunks(t *testing.T) {
	u, idx, _ := testUpdater(t)

	doc := models.SourceDocument{
		ID:       "ref-1",
		Origin:   models.OriginNotice,
		Title:    "Flagged patterns",
		FullText: "A penalty clause disproportionate to the actual loss suffered is unenforceable in law.",
	}
	_, _, err := u.RefreshWithMetadata(context.Background(), doc, map[string]string{
		"issue_kind": "unconscionable penalty clause",
		"severity":   "high",
	})
	if err != nil {
		t.Fatalf("RefreshWithMetadata() error = %v", err)
	}

	results, err := idx.Query([]float64{1, 0, 0}, 1, index.Filter{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d entries", len(results))
	}
	md := results[0].Entry.Metadata
	if md["issue_kind"] != "unconscionable penalty clause" || md["severity"] != "high" {
		t.Errorf("extra metadata missing: %+v", md)
	}
	if md["domain"] == "" {
		t.Error("chunk-derived metadata lost in merge")
	}
}

func TestUpdater_Remove(t *testing.T) {
	u, idx, _ := testUpdater(t)
	ctx := context.Background()

	if _, _, err := u.Refresh(ctx, statuteDoc("act-1", strings.Repeat("Some text. ", 15))); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if err := u.Remove("act-1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	info, err := idx.Source("act-1")
	if err != nil {
		t.Fatalf("Source() error = %v", err)
	}
	if info != nil {
		t.Errorf("removed source still registered: %+v", info)
	}
}

func TestUpdater_RemoveReleasesSourceLockEntry(t *testing.T) {
	u, _, _ := testUpdater(t)
	ctx := context.Background()

	for _, id := range []string{"act-1", "act-2"} {
		if _, _, err := u.Refresh(ctx, statuteDoc(id, strings.Repeat("Text of "+id+". ", 15))); err != nil {
			t.Fatalf("Refresh(%s) error = %v", id, err)
		}
	}
	if err := u.Remove("act-1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	u.mu.Lock()
	_, gone := u.inFlight["act-1"]
	_, kept := u.inFlight["act-2"]
	u.mu.Unlock()
	if gone {
		t.Error("removed source still holds a lock entry")
	}
	if !kept {
		t.Error("unrelated source lost its lock entry")
	}

	// A later re-ingest of the same ID must still work
	if _, updated, err := u.Refresh(ctx, statuteDoc("act-1", strings.Repeat("New text. ", 15))); err != nil || !updated {
		t.Errorf("re-ingest after Remove: updated=%v err=%v", updated, err)
	}
}

func TestUpdater_ConcurrentRefreshesOfDifferentSources(t *testing.T) {
	u, idx, _ := testUpdater(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			doc := statuteDoc(id, strings.Repeat("Text of "+id+". ", 20))
			if _, _, err := u.Refresh(ctx, doc); err != nil {
				errs <- err
			}
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Refresh() error = %v", err)
	}

	sources, err := idx.Sources()
	if err != nil {
		t.Fatalf("Sources() error = %v", err)
	}
	if len(sources) != 8 {
		t.Errorf("got %d sources, want 8", len(sources))
	}
}
