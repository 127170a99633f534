package runtime

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/qrregister/internal/buildinfo"
	"github.com/tphakala/qrregister/internal/conf"
	"github.com/tphakala/qrregister/internal/datastore"
	"github.com/tphakala/qrregister/internal/logger"
	"github.com/tphakala/qrregister/internal/registration"
)

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	dir := t.TempDir()
	return &conf.Settings{
		Main: conf.MainSettings{Name: "qrregister", DataDir: dir},
		Logging: logger.LoggingConfig{
			DefaultLevel: "error",
			Console:      &logger.ConsoleOutput{Enabled: false, Level: "error"},
		},
		Store:  conf.StoreSettings{Path: "test.db", SlowThreshold: time.Second},
		Export: conf.ExportSettings{Dir: "exports", Stdout: true},
		Registration: conf.RegistrationSettings{
			WarningDuration: time.Minute,
			SuccessDuration: time.Minute,
			ErrorDuration:   time.Minute,
		},
		Metrics: conf.MetricsSettings{Enabled: true, TextFile: filepath.Join(dir, "qrregister.prom")},
	}
}

func newTestContext(t *testing.T, settings *conf.Settings) (c *Context, stdout, stderr *bytes.Buffer) {
	t.Helper()
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	c = New(buildinfo.NewContext("1.2.3", "2024-01-15"))
	c.Settings = settings
	c.Stdin = strings.NewReader("")
	c.Stdout = stdout
	c.Stderr = stderr
	return c, stdout, stderr
}

// Setup replaces the global logger, so these tests do not run in parallel.

func TestSetupRegisterExportAndClose(t *testing.T) {
	settings := testSettings(t)
	c, stdout, stderr := newTestContext(t, settings)

	require.NoError(t, c.Setup(t.Context()))
	require.NotNil(t, c.Metrics)
	_, isSQLite := c.Store.(*datastore.SQLiteStore)
	assert.True(t, isSQLite)

	flow := c.RegistrationFlow(nil)
	outcome, err := flow.Submit(t.Context(), "A1", "Bob")
	require.NoError(t, err)
	assert.Equal(t, registration.OutcomeRegistered, outcome)

	list := c.RecordList()
	require.NoError(t, list.Refresh(t.Context()))
	require.Equal(t, 1, list.Len())
	require.True(t, list.Export(t.Context()))

	require.NoError(t, c.Close())

	assert.True(t, strings.HasPrefix(stdout.String(), "QR Code,Name,Timestamp,Timezone Offset\n\"A1\",\"Bob\","))
	assert.Contains(t, stderr.String(), "[success] "+registration.MsgRegistered)

	data, err := os.ReadFile(settings.Metrics.TextFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "qrregister_registrations_total")

	_, err = os.Stat(settings.StorePath())
	require.NoError(t, err, "database file should exist")
}

func TestSetupWithMemoryStoreAndNoMetrics(t *testing.T) {
	settings := testSettings(t)
	settings.Store.Memory = true
	settings.Metrics.Enabled = false
	settings.Debug = true
	c, _, _ := newTestContext(t, settings)

	require.NoError(t, c.Setup(t.Context()))
	assert.Nil(t, c.Metrics)
	_, isMemory := c.Store.(*datastore.MemoryStore)
	assert.True(t, isMemory)
	assert.Equal(t, "error", settings.Logging.DefaultLevel, "debug override must not leak into settings")

	completed := make(chan datastore.Record, 1)
	flow := c.RegistrationFlow(func(_ context.Context, rec datastore.Record) { completed <- rec })
	_, err := flow.Submit(t.Context(), "B2", "")
	require.NoError(t, err)
	assert.Equal(t, conf.DefaultLabel, (<-completed).Label)

	require.NoError(t, c.Close())
	_, err = os.Stat(settings.StorePath())
	assert.True(t, os.IsNotExist(err), "memory store must not create a database file")
}

func TestCloseWithoutSetup(t *testing.T) {
	c, _, _ := newTestContext(t, testSettings(t))
	require.NoError(t, c.Close())
}

func TestSetupFailsOnInvalidStorePath(t *testing.T) {
	settings := testSettings(t)
	settings.Store.Path = ""
	c, _, _ := newTestContext(t, settings)

	require.Error(t, c.Setup(t.Context()))
	require.NoError(t, c.Close())
}
