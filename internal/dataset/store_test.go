package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

// stubFetcher serves canned results for fallback-ladder tests.
type stubFetcher struct {
	industries []Industry
	err        error
	calls      int
}

func (f *stubFetcher) Fetch(_ context.Context) ([]Industry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.industries, nil
}

func (f *stubFetcher) Name() string { return SourceRemote }

func TestStoreLoadRemote(t *testing.T) {
	store := NewStore(zap.NewNop())
	fetcher := &stubFetcher{industries: []Industry{{Name: "Advertising", DebtPct: 18.55, Beta: 1.51, WACC: 8.79}}}

	if err := store.Load(context.Background(), fetcher, ""); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	snap := store.Snapshot()
	if snap.Source != SourceRemote {
		t.Errorf("Source = %q, expected %q", snap.Source, SourceRemote)
	}
	if len(snap.Industries) != 1 {
		t.Fatalf("expected 1 industry, got %d", len(snap.Industries))
	}
	if snap.LoadedAt.IsZero() {
		t.Error("LoadedAt not set")
	}
}

func TestStoreLoadFallsBackToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wacc.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	store := NewStore(zap.NewNop())
	fetcher := &stubFetcher{err: errors.New("network down")}

	if err := store.Load(context.Background(), fetcher, path); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	snap := store.Snapshot()
	if snap.Source != SourceFile {
		t.Errorf("Source = %q, expected %q", snap.Source, SourceFile)
	}
	if len(snap.Industries) != 3 {
		t.Errorf("expected 3 industries from the file, got %d", len(snap.Industries))
	}
}

func TestStoreLoadFallsBackToSample(t *testing.T) {
	store := NewStore(zap.NewNop())
	fetcher := &stubFetcher{err: errors.New("network down")}

	if err := store.Load(context.Background(), fetcher, ""); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	snap := store.Snapshot()
	if snap.Source != SourceSample {
		t.Errorf("Source = %q, expected %q", snap.Source, SourceSample)
	}
	if len(snap.Industries) != len(Sample()) {
		t.Errorf("expected the sample table, got %d industries", len(snap.Industries))
	}
}

func TestStoreLoadBadFileFails(t *testing.T) {
	store := NewStore(zap.NewNop())
	fetcher := &stubFetcher{err: errors.New("network down")}

	err := store.Load(context.Background(), fetcher, filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil {
		t.Fatal("expected an error for a missing configured file")
	}
}

func TestStoreReplace(t *testing.T) {
	store := NewStore(zap.NewNop())
	if err := store.Load(context.Background(), nil, ""); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	replacement := []Industry{{Name: "Software (System)", DebtPct: 6.5, Beta: 1.3, WACC: 9.8}}
	if err := store.Replace(replacement, SourceUpload); err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}

	snap := store.Snapshot()
	if snap.Source != SourceUpload {
		t.Errorf("Source = %q, expected %q", snap.Source, SourceUpload)
	}
	if len(snap.Industries) != 1 || snap.Industries[0].Name != "Software (System)" {
		t.Errorf("unexpected table after replace: %v", snap.Industries)
	}

	if err := store.Replace(nil, SourceUpload); err == nil {
		t.Error("expected an error for an empty replacement")
	}
}

func TestStoreFind(t *testing.T) {
	store := NewStore(zap.NewNop())
	if err := store.Load(context.Background(), nil, ""); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	industry, ok := store.Find("Air Transport")
	if !ok {
		t.Fatal("expected to find Air Transport in the sample")
	}
	if industry.Beta != 1.44 {
		t.Errorf("Beta = %v, expected 1.44", industry.Beta)
	}

	if _, ok := store.Find("Nonexistent"); ok {
		t.Error("expected a miss for an unknown industry")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	store := NewStore(zap.NewNop())
	if err := store.Load(context.Background(), nil, ""); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	snap := store.Snapshot()
	snap.Industries[0].Name = "mutated"

	if store.Snapshot().Industries[0].Name == "mutated" {
		t.Error("snapshot mutation reached the store")
	}
}
