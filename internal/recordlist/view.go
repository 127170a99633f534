// Package recordlist presents stored records newest first and carries the
// edit, delete and export actions of the list.
package recordlist

import (
	"context"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/tphakala/qrregister/internal/datastore"
	"github.com/tphakala/qrregister/internal/logger"
	"github.com/tphakala/qrregister/internal/notice"
	"github.com/tphakala/qrregister/internal/registration"
	"github.com/tphakala/qrregister/internal/timeformat"
)

// User-facing messages.
const (
	MsgEmpty           = "No records yet. Scan a QR code to begin."
	MsgNothingToExport = "There are no records to export."
	MsgExported        = "Records exported successfully."
	MsgExportFailed    = "Unable to export records. Please try again."
	MsgExportError     = "Failed to export records. Please try again."
	MsgRenamed         = "Record updated."
	MsgRenameFailed    = "Failed to update record. Please try again."
	MsgDeleted         = "Record deleted."
	MsgDeleteFailed    = "Failed to delete record. Please try again."
	MsgDeleteConfirm   = "Are you sure you want to delete this record?"
)

const noticeTTL = 3 * time.Second

// Exporter exports a record set, sorting it newest first.
type Exporter interface {
	ExportSorted(ctx context.Context, records []datastore.Record) bool
}

// Sorted returns records ordered by capture time, newest first.
func Sorted(records []datastore.Record) []datastore.Record {
	return datastore.SortNewestFirst(records)
}

// View holds the last loaded, sorted record set.
type View struct {
	store    datastore.Interface
	exporter Exporter
	notices  *notice.Board
	log      logger.Logger

	mu      sync.RWMutex
	records []datastore.Record
}

// NewView creates an empty view. Call Refresh to load records.
func NewView(store datastore.Interface, exporter Exporter, notices *notice.Board) *View {
	return &View{
		store:    store,
		exporter: exporter,
		notices:  notices,
		log:      GetLogger(),
	}
}

// Refresh reloads all records from the store.
func (v *View) Refresh(ctx context.Context) error {
	records, err := v.store.ListAll(ctx)
	if err != nil {
		v.log.Error("failed to load records", logger.Error(err))
		return err
	}

	sorted := Sorted(records)
	v.mu.Lock()
	v.records = sorted
	v.mu.Unlock()
	return nil
}

// Records returns a copy of the loaded records, newest first.
func (v *View) Records() []datastore.Record {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]datastore.Record(nil), v.records...)
}

// Len returns the number of loaded records.
func (v *View) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.records)
}

// Render writes the loaded records as a table, or the empty-state text.
func (v *View) Render(w io.Writer) error {
	records := v.Records()
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, MsgEmpty)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "QR CODE\tNAME\tREGISTERED"); err != nil {
		return err
	}
	for i := range records {
		rec := &records[i]
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n",
			rec.Code, rec.Label, timeformat.FormatDisplayTime(rec.CapturedAt)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Rename sets a new label, falling back to "Unnamed" for a blank name, and
// reloads the list.
func (v *View) Rename(ctx context.Context, code, name string) error {
	label := registration.LabelOrDefault(name)
	if err := v.store.Rename(ctx, code, label); err != nil {
		v.log.Error("rename failed",
			logger.String("code", code),
			logger.Error(err))
		v.publish(notice.KindError, MsgRenameFailed)
		return err
	}

	v.publish(notice.KindSuccess, MsgRenamed)
	v.log.Info("record renamed",
		logger.String("code", code),
		logger.String("label", label))
	return v.Refresh(ctx)
}

// Delete removes the record and reloads the list.
func (v *View) Delete(ctx context.Context, code string) error {
	if err := v.store.Remove(ctx, code); err != nil {
		v.log.Error("delete failed",
			logger.String("code", code),
			logger.Error(err))
		v.publish(notice.KindError, MsgDeleteFailed)
		return err
	}

	v.publish(notice.KindSuccess, MsgDeleted)
	v.log.Info("record deleted", logger.String("code", code))
	return v.Refresh(ctx)
}

// Export re-reads the store and exports every record newest first. With an
// empty list it only shows an informational notice.
func (v *View) Export(ctx context.Context) bool {
	if v.Len() == 0 {
		v.publish(notice.KindInfo, MsgNothingToExport)
		return false
	}

	latest, err := v.store.ListAll(ctx)
	if err != nil {
		v.log.Error("failed to load records for export", logger.Error(err))
		v.publish(notice.KindError, MsgExportError)
		return false
	}

	if !v.exporter.ExportSorted(ctx, latest) {
		v.publish(notice.KindError, MsgExportFailed)
		return false
	}

	v.publish(notice.KindSuccess, MsgExported)
	return true
}

func (v *View) publish(kind notice.Kind, message string) {
	if v.notices != nil {
		v.notices.Publish(kind, "", message, noticeTTL)
	}
}
