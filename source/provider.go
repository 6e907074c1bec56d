package source

import (
	"context"
	"log/slog"
	"time"

	"agrodash/dataset"
)

// Logical dataset names, also the snapshot keys.
const (
	DatasetProduction = "production"
	DatasetQuality    = "quality"
)

// Snapshotter persists the last successfully fetched copy of a raw
// dataset. Implemented by database.SnapshotStore.
type Snapshotter interface {
	Save(name string, ds *dataset.RawDataset) error
	Load(name string, maxAge time.Duration) (*dataset.RawDataset, error)
}

// DatasetSpec describes where one logical dataset lives.
type DatasetSpec struct {
	Name      string
	SheetURL  string // remote document; empty disables the remote fetch
	Worksheet string // tab name; empty means first tab
	LocalGlob string // fallback workbook pattern; empty disables
}

// Provider resolves each logical dataset through a fallback chain:
// remote sheet, local workbook, last good snapshot, empty. It never
// returns an error; an exhausted chain yields an empty dataset, which
// downstream treats as the SourceUnavailable state.
type Provider struct {
	client      *SheetsClient
	store       Snapshotter
	snapshotAge time.Duration
	logger      *slog.Logger
}

// NewProvider wires the fallback chain. client and store may be nil to
// disable the corresponding stages. snapshotAge bounds how stale a
// snapshot may be before it stops counting as data.
func NewProvider(client *SheetsClient, store Snapshotter, snapshotAge time.Duration, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	if snapshotAge <= 0 {
		snapshotAge = 7 * 24 * time.Hour
	}
	return &Provider{
		client:      client,
		store:       store,
		snapshotAge: snapshotAge,
		logger:      logger,
	}
}

// Fetch runs the fallback chain for one dataset.
func (p *Provider) Fetch(ctx context.Context, spec DatasetSpec) *dataset.RawDataset {
	if p.client != nil && spec.SheetURL != "" {
		ds, err := p.client.FetchWorksheet(ctx, spec.SheetURL, spec.Worksheet)
		if err == nil && !ds.IsEmpty() {
			p.snapshot(spec.Name, ds)
			return ds
		}
		if err != nil {
			p.logger.Warn("remote fetch failed, trying fallback", "dataset", spec.Name, "error", err)
		}
	}

	if spec.LocalGlob != "" {
		if path, err := FindWorkbook(spec.LocalGlob); err == nil {
			ds, err := LoadWorkbook(path)
			if err == nil && !ds.IsEmpty() {
				p.logger.Info("dataset loaded from local workbook", "dataset", spec.Name, "path", path)
				p.snapshot(spec.Name, ds)
				return ds
			}
			if err != nil {
				p.logger.Warn("local workbook unusable", "dataset", spec.Name, "path", path, "error", err)
			}
		}
	}

	if p.store != nil {
		ds, err := p.store.Load(spec.Name, p.snapshotAge)
		if err == nil && !ds.IsEmpty() {
			p.logger.Info("dataset restored from snapshot", "dataset", spec.Name, "rows", ds.Len())
			return ds
		}
	}

	p.logger.Warn("dataset unavailable from all sources", "dataset", spec.Name)
	return &dataset.RawDataset{}
}

func (p *Provider) snapshot(name string, ds *dataset.RawDataset) {
	if p.store == nil {
		return
	}
	if err := p.store.Save(name, ds); err != nil {
		p.logger.Warn("failed to snapshot dataset", "dataset", name, "error", err)
	}
}
