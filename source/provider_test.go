package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"agrodash/dataset"
)

type fakeSnapshotter struct {
	saved map[string]*dataset.RawDataset
}

func newFakeSnapshotter() *fakeSnapshotter {
	return &fakeSnapshotter{saved: make(map[string]*dataset.RawDataset)}
}

func (f *fakeSnapshotter) Save(name string, ds *dataset.RawDataset) error {
	f.saved[name] = ds
	return nil
}

func (f *fakeSnapshotter) Load(name string, _ time.Duration) (*dataset.RawDataset, error) {
	if ds, ok := f.saved[name]; ok {
		return ds, nil
	}
	return &dataset.RawDataset{}, nil
}

func TestProviderRemoteFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Fecha,Lote\n04/03/2024,1\n"))
	}))
	defer srv.Close()

	client := NewSheetsClient(time.Second, nil)
	client.SetBaseURL(srv.URL)
	store := newFakeSnapshotter()
	p := NewProvider(client, store, time.Hour, nil)

	ds := p.Fetch(context.Background(), DatasetSpec{Name: DatasetProduction, SheetURL: "doc123"})
	if ds.Len() != 1 {
		t.Fatalf("expected remote dataset, got %d rows", ds.Len())
	}
	if store.saved[DatasetProduction] == nil {
		t.Fatal("successful fetch should be snapshotted")
	}
}

func TestProviderFallsBackToLocal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calidad_s10.xlsx")
	writeTestWorkbook(t, path, [][]interface{}{
		{"Fecha", "Lote", "Nota"},
		{"04/03/2024", "1", 18},
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewSheetsClient(time.Second, nil)
	client.SetBaseURL(srv.URL)
	p := NewProvider(client, newFakeSnapshotter(), time.Hour, nil)

	ds := p.Fetch(context.Background(), DatasetSpec{
		Name:      DatasetQuality,
		SheetURL:  "doc123",
		LocalGlob: filepath.Join(dir, "*calidad*.xlsx"),
	})
	if ds.Len() != 1 {
		t.Fatalf("expected local fallback dataset, got %d rows", ds.Len())
	}
}

func TestProviderFallsBackToSnapshot(t *testing.T) {
	store := newFakeSnapshotter()
	store.saved[DatasetProduction] = &dataset.RawDataset{
		Columns: []string{"Fecha"},
		Rows:    []dataset.Row{{"Fecha": "04/03/2024"}},
	}

	// No client, no local file: only the snapshot remains.
	p := NewProvider(nil, store, time.Hour, nil)
	ds := p.Fetch(context.Background(), DatasetSpec{Name: DatasetProduction})
	if ds.Len() != 1 {
		t.Fatalf("expected snapshot dataset, got %d rows", ds.Len())
	}
}

func TestProviderExhaustedChainYieldsEmpty(t *testing.T) {
	p := NewProvider(nil, nil, time.Hour, nil)
	ds := p.Fetch(context.Background(), DatasetSpec{Name: DatasetQuality})
	if ds == nil || !ds.IsEmpty() {
		t.Fatalf("expected empty dataset, got %+v", ds)
	}
}
