package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JonMunkholm/gridclip/internal/fields"
	"github.com/JonMunkholm/gridclip/internal/metrics"
	"github.com/JonMunkholm/gridclip/internal/transfer"
)

var _ transfer.Observer = (*metrics.Collector)(nil)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}
	if m.TransfersTotal == nil {
		t.Error("TransfersTotal is nil")
	}
	if m.TransferDuration == nil {
		t.Error("TransferDuration is nil")
	}
	if m.SchemaReloads == nil {
		t.Error("SchemaReloads is nil")
	}
}

func TestObserveTransfer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.ObserveTransfer(transfer.OpCopy, fields.Number, "ok", 2*time.Millisecond)
	m.ObserveTransfer(transfer.OpCopy, fields.Number, "ok", time.Millisecond)
	m.ObserveTransfer(transfer.OpPaste, fields.Date, "capability_denied", 0)
	m.ObserveTransfer(transfer.OpPaste, "", "no_selection", 0)

	if got := testutil.ToFloat64(m.TransfersTotal.WithLabelValues("copy", "number", "ok")); got != 2 {
		t.Errorf("copy/number/ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.TransfersTotal.WithLabelValues("paste", "none", "no_selection")); got != 1 {
		t.Errorf("paste/none/no_selection = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.TransfersTotal); got != 3 {
		t.Errorf("series = %d, want 3", got)
	}
	if got := testutil.CollectAndCount(m.TransferDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestSchemaReloaded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.SchemaReloaded(3, nil)
	m.SchemaReloaded(0, errors.New("bad yaml"))

	if got := testutil.ToFloat64(m.SchemaReloads); got != 1 {
		t.Errorf("SchemaReloads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SchemaReloadErrors); got != 1 {
		t.Errorf("SchemaReloadErrors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TablesLoaded); got != 3 {
		t.Errorf("TablesLoaded = %v, want 3", got)
	}
	if testutil.ToFloat64(m.SchemaLastReload) == 0 {
		t.Error("SchemaLastReload not set")
	}
}

func TestObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.ObserveRequest("POST", "/api/tables/{tableKey}/copy", 200, time.Millisecond)
	m.ObserveRequest("POST", "/api/tables/{tableKey}/copy", 422, time.Millisecond)
	m.ObserveRequest("GET", "", 404, time.Millisecond)

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "/api/tables/{tableKey}/copy", "4xx")); got != 1 {
		t.Errorf("4xx = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "4xx")); got != 1 {
		t.Errorf("unmatched = %v, want 1", got)
	}
}
