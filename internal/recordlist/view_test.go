package recordlist

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/qrregister/internal/datastore"
	"github.com/tphakala/qrregister/internal/errors"
	"github.com/tphakala/qrregister/internal/export"
	"github.com/tphakala/qrregister/internal/notice"
)

func seededStore(t *testing.T, records ...datastore.Record) datastore.Interface {
	t.Helper()
	store := datastore.NewMemoryStore(nil)
	require.NoError(t, store.Initialize(t.Context()))
	t.Cleanup(func() { _ = store.Close() })
	for _, rec := range records {
		require.NoError(t, store.Upsert(t.Context(), rec))
	}
	return store
}

func newBoard(t *testing.T) *notice.Board {
	t.Helper()
	board := notice.NewBoard(time.Minute)
	t.Cleanup(board.Close)
	return board
}

var (
	older = datastore.Record{Code: "A1", Label: "Bob", CapturedAt: "2024-01-15T10:30:00.000Z", UTCOffsetMinutes: 180}
	newer = datastore.Record{Code: "B2", Label: "Unnamed", CapturedAt: "2024-01-16T21:05:00.000Z", UTCOffsetMinutes: 180}
)

// stubExporter records what it was asked to export.
type stubExporter struct {
	ok       bool
	calls    int
	exported []datastore.Record
}

func (s *stubExporter) ExportSorted(_ context.Context, records []datastore.Record) bool {
	s.calls++
	s.exported = Sorted(records)
	return s.ok
}

func lastNotice(t *testing.T, board *notice.Board) *notice.Notice {
	t.Helper()
	active := board.Active()
	require.NotEmpty(t, active)
	return active[len(active)-1]
}

func TestRefreshSortsNewestFirst(t *testing.T) {
	t.Parallel()

	view := NewView(seededStore(t, older, newer), &stubExporter{}, nil)
	require.NoError(t, view.Refresh(t.Context()))

	assert.Equal(t, []datastore.Record{newer, older}, view.Records())
	assert.Equal(t, 2, view.Len())
}

func TestRenderTable(t *testing.T) {
	t.Parallel()

	view := NewView(seededStore(t, older, newer), &stubExporter{}, nil)
	require.NoError(t, view.Refresh(t.Context()))

	var out bytes.Buffer
	require.NoError(t, view.Render(&out))

	want := "QR CODE  NAME     REGISTERED\n" +
		"B2       Unnamed  Jan 17, 2024, 12:05 AM EAT\n" +
		"A1       Bob      Jan 15, 2024, 1:30 PM EAT\n"
	assert.Equal(t, want, out.String())
}

func TestRenderEmpty(t *testing.T) {
	t.Parallel()

	view := NewView(seededStore(t), &stubExporter{}, nil)
	require.NoError(t, view.Refresh(t.Context()))

	var out bytes.Buffer
	require.NoError(t, view.Render(&out))
	assert.Equal(t, MsgEmpty+"\n", out.String())
}

func TestRenameUsesDefaultLabelAndRefreshes(t *testing.T) {
	t.Parallel()

	board := newBoard(t)
	view := NewView(seededStore(t, older), &stubExporter{}, board)
	require.NoError(t, view.Refresh(t.Context()))

	require.NoError(t, view.Rename(t.Context(), "A1", "  Robert "))
	assert.Equal(t, "Robert", view.Records()[0].Label)

	require.NoError(t, view.Rename(t.Context(), "A1", "   "))
	assert.Equal(t, "Unnamed", view.Records()[0].Label)
	assert.Equal(t, older.CapturedAt, view.Records()[0].CapturedAt)

	n := lastNotice(t, board)
	assert.Equal(t, notice.KindSuccess, n.Kind)
	assert.Equal(t, MsgRenamed, n.Message)
}

func TestRenameMissingCodePublishesError(t *testing.T) {
	t.Parallel()

	board := newBoard(t)
	view := NewView(seededStore(t), &stubExporter{}, board)

	err := view.Rename(t.Context(), "missing", "x")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	n := lastNotice(t, board)
	assert.Equal(t, notice.KindError, n.Kind)
	assert.Equal(t, MsgRenameFailed, n.Message)
}

func TestDeleteRemovesAndRefreshes(t *testing.T) {
	t.Parallel()

	board := newBoard(t)
	view := NewView(seededStore(t, older, newer), &stubExporter{}, board)
	require.NoError(t, view.Refresh(t.Context()))

	require.NoError(t, view.Delete(t.Context(), "B2"))
	assert.Equal(t, []datastore.Record{older}, view.Records())

	require.NoError(t, view.Delete(t.Context(), "missing"), "deleting an absent code is a no-op")
	assert.Equal(t, MsgDeleted, lastNotice(t, board).Message)
}

func TestExportEmptyShowsInfo(t *testing.T) {
	t.Parallel()

	board := newBoard(t)
	exporter := &stubExporter{ok: true}
	view := NewView(seededStore(t), exporter, board)
	require.NoError(t, view.Refresh(t.Context()))

	assert.False(t, view.Export(t.Context()))
	assert.Zero(t, exporter.calls)

	n := lastNotice(t, board)
	assert.Equal(t, notice.KindInfo, n.Kind)
	assert.Equal(t, MsgNothingToExport, n.Message)
}

func TestExportRereadsStore(t *testing.T) {
	t.Parallel()

	store := seededStore(t, older)
	board := newBoard(t)
	exporter := &stubExporter{ok: true}
	view := NewView(store, exporter, board)
	require.NoError(t, view.Refresh(t.Context()))

	// written after the last refresh
	require.NoError(t, store.Upsert(t.Context(), newer))

	assert.True(t, view.Export(t.Context()))
	assert.Equal(t, []datastore.Record{newer, older}, exporter.exported)
	assert.Equal(t, MsgExported, lastNotice(t, board).Message)
}

func TestExportFailurePublishesError(t *testing.T) {
	t.Parallel()

	board := newBoard(t)
	view := NewView(seededStore(t, older), &stubExporter{ok: false}, board)
	require.NoError(t, view.Refresh(t.Context()))

	assert.False(t, view.Export(t.Context()))
	n := lastNotice(t, board)
	assert.Equal(t, notice.KindError, n.Kind)
	assert.Equal(t, MsgExportFailed, n.Message)
}

func TestExportWithCSVExporter(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	exp := export.NewExporter(export.Config{
		Fs:  fs,
		Dir: "/exports",
		Now: func() time.Time { return time.Date(2024, 1, 17, 9, 0, 0, 0, time.UTC) },
	})
	view := NewView(seededStore(t, older, newer), exp, nil)
	require.NoError(t, view.Refresh(t.Context()))

	require.True(t, view.Export(t.Context()))

	data, err := afero.ReadFile(fs, "/exports/qr-records-2024-01-17.csv")
	require.NoError(t, err)
	assert.Equal(t, export.Header+"\n"+
		`"B2","Unnamed","2024-01-16T21:05:00.000Z",180`+"\n"+
		`"A1","Bob","2024-01-15T10:30:00.000Z",180`, string(data))
}
