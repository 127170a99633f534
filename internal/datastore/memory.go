package datastore

import (
	"context"
	"sync"
	"time"

	"github.com/tphakala/qrregister/internal/errors"
	"github.com/tphakala/qrregister/internal/observability/metrics"
)

// MemoryStore keeps records in a map. Contents are lost on Close.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	metrics metrics.Recorder
}

// NewMemoryStore creates an empty, unopened in-memory store.
func NewMemoryStore(recorder metrics.Recorder) *MemoryStore {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &MemoryStore{metrics: recorder}
}

func (m *MemoryStore) Initialize(_ context.Context) error {
	start := time.Now()
	m.mu.Lock()
	if m.records == nil {
		m.records = make(map[string]Record)
	}
	m.mu.Unlock()
	observe(m.metrics, metrics.OpInitialize, start, nil)
	return nil
}

func (m *MemoryStore) ready(operation string) error {
	if m.records == nil {
		return dbError(errors.NewStd("memory store is not initialized"), operation)
	}
	return nil
}

func (m *MemoryStore) Exists(_ context.Context, code string) (found bool, err error) {
	start := time.Now()
	defer func() { observe(m.metrics, metrics.OpExists, start, err) }()

	m.mu.RLock()
	defer m.mu.RUnlock()
	if err = m.ready(metrics.OpExists); err != nil {
		return false, err
	}
	_, found = m.records[code]
	return found, nil
}

func (m *MemoryStore) Upsert(_ context.Context, rec Record) (err error) {
	start := time.Now()
	defer func() { observe(m.metrics, metrics.OpUpsert, start, err) }()

	if err = validateRecord(rec); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err = m.ready(metrics.OpUpsert); err != nil {
		return err
	}
	m.records[rec.Code] = rec
	return nil
}

func (m *MemoryStore) ListAll(_ context.Context) (records []Record, err error) {
	start := time.Now()
	defer func() { observe(m.metrics, metrics.OpListAll, start, err) }()

	m.mu.RLock()
	defer m.mu.RUnlock()
	if err = m.ready(metrics.OpListAll); err != nil {
		return nil, err
	}
	records = make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		records = append(records, rec)
	}
	updateRecordCount(m.metrics, len(records))
	return records, nil
}

func (m *MemoryStore) Rename(_ context.Context, code, label string) (err error) {
	start := time.Now()
	defer func() { observe(m.metrics, metrics.OpRename, start, err) }()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err = m.ready(metrics.OpRename); err != nil {
		return err
	}
	rec, ok := m.records[code]
	if !ok {
		return notFoundError(code)
	}
	rec.Label = label
	m.records[code] = rec
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, code string) (err error) {
	start := time.Now()
	defer func() { observe(m.metrics, metrics.OpRemove, start, err) }()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err = m.ready(metrics.OpRemove); err != nil {
		return err
	}
	delete(m.records, code)
	return nil
}

// Close drops all records.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.records = nil
	m.mu.Unlock()
	return nil
}
