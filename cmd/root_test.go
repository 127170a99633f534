package cmd

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/qrregister/internal/buildinfo"
	"github.com/tphakala/qrregister/internal/recordlist"
	"github.com/tphakala/qrregister/internal/registration"
	"github.com/tphakala/qrregister/internal/runtime"
)

// These tests share viper and the global logger, so they do not run in parallel.

// writeConfig writes a test config. extra is appended as YAML.
func writeConfig(t *testing.T, extra ...string) (configPath, dataDir string) {
	t.Helper()
	dir := t.TempDir()
	dataDir = filepath.Join(dir, "data")
	configPath = filepath.Join(dir, "config.yaml")

	config := `main:
  datadir: ` + dataDir + `
logging:
  default_level: error
  console:
    enabled: false
    level: error
store:
  path: qrregister.db
export:
  dir: exports
  stdout: true
metrics:
  enabled: false
` + strings.Join(extra, "")
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o600))
	return configPath, dataDir
}

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, configPath, stdin string, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	rt := runtime.New(buildinfo.NewContext("1.2.3", "2024-01-15"))
	rt.Stdin = strings.NewReader(stdin)
	rt.Stdout = &stdout
	rt.Stderr = &stderr

	root := RootCommand(rt)
	root.SetArgs(append(args, "--config", configPath))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(t.Context())
	require.NoError(t, rt.Close())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestRegisterListRenameDelete(t *testing.T) {
	configPath, _ := writeConfig(t)

	res := execute(t, configPath, "", "register", "A1", "--name", "Bob")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "[success] "+registration.MsgRegistered)

	res = execute(t, configPath, "", "register", "A1", "--name", "Alice")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "[warning] "+registration.MsgDuplicate)

	res = execute(t, configPath, "", "list")
	require.NoError(t, res.err)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "A1"))
	assert.Contains(t, lines[1], "Bob")
	assert.Contains(t, lines[1], "EAT")

	res = execute(t, configPath, "", "rename", "A1", "Robert")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, recordlist.MsgRenamed)

	res = execute(t, configPath, "", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Robert")

	res = execute(t, configPath, "n\n", "delete", "A1")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, recordlist.MsgDeleteConfirm)

	res = execute(t, configPath, "", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Robert", "declined delete keeps the record")

	res = execute(t, configPath, "", "delete", "A1", "--yes")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, recordlist.MsgDeleted)

	res = execute(t, configPath, "", "list")
	require.NoError(t, res.err)
	assert.Equal(t, recordlist.MsgEmpty+"\n", res.stdout)
}

func TestRegisterBlankCodeFails(t *testing.T) {
	configPath, _ := writeConfig(t)

	res := execute(t, configPath, "", "register", "   ")
	require.Error(t, res.err)
}

func TestRenameMissingCodeFails(t *testing.T) {
	configPath, _ := writeConfig(t)

	res := execute(t, configPath, "", "rename", "missing", "x")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, recordlist.MsgRenameFailed)
}

func TestExportWritesFileAndStdout(t *testing.T) {
	configPath, dataDir := writeConfig(t)

	res := execute(t, configPath, "", "export")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, recordlist.MsgNothingToExport)

	require.NoError(t, execute(t, configPath, "", "register", "A1", "--name", "Bob").err)

	res = execute(t, configPath, "", "export")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "QR Code,Name,Timestamp,Timezone Offset\n\"A1\",\"Bob\","))
	assert.Contains(t, res.stderr, recordlist.MsgExported)

	files, err := filepath.Glob(filepath.Join(dataDir, "exports", "qr-records-*.csv"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestExportToShareDir(t *testing.T) {
	configPath, _ := writeConfig(t)
	shareDir := t.TempDir()

	require.NoError(t, execute(t, configPath, "", "register", "A1").err)

	res := execute(t, configPath, "", "export", "--share-dir", shareDir)
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout, "a share target replaces the stdout download")

	files, err := filepath.Glob(filepath.Join(shareDir, "qr-records-*.csv"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestScanRegistersLinesFromStdin(t *testing.T) {
	configPath, _ := writeConfig(t)

	res := execute(t, configPath, "A1\n\nB2\nA1\n", "scan", "--name", "Desk")
	require.NoError(t, res.err)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 2, "blank lines are ignored and the repeat is a duplicate")
	assert.True(t, strings.HasPrefix(lines[0], "A1\tDesk\t"))
	assert.True(t, strings.HasPrefix(lines[1], "B2\tDesk\t"))
	assert.Contains(t, res.stderr, "[warning] "+registration.MsgDuplicate)
}

func TestScanNamesEachCode(t *testing.T) {
	configPath, _ := writeConfig(t)

	stdin := "A1\tAlice\nB2\n:name Carol\nC3\nD4\t \n"
	res := execute(t, configPath, stdin, "scan", "--name", "Desk")
	require.NoError(t, res.err)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "A1\tAlice\t"))
	assert.True(t, strings.HasPrefix(lines[1], "B2\tDesk\t"))
	assert.True(t, strings.HasPrefix(lines[2], "C3\tCarol\t"))
	assert.True(t, strings.HasPrefix(lines[3], "D4\tCarol\t"), "a blank name falls back to the current one")

	res = execute(t, configPath, "", "list")
	require.NoError(t, res.err)
	assert.NotContains(t, res.stdout, ":name")
}

func TestScanCameraFallbackAndRetry(t *testing.T) {
	configPath, _ := writeConfig(t, "capture:\n  command: qrregister-no-such-decoder\n")

	res := execute(t, configPath, "A1\n:camera\nB2\n", "scan", "--camera", "--name", "Desk")
	require.NoError(t, res.err, "stdin ending closes the session")

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 2, ":camera is a command, not a code")
	assert.True(t, strings.HasPrefix(lines[0], "A1\tDesk\t"))
	assert.True(t, strings.HasPrefix(lines[1], "B2\tDesk\t"))
	assert.Contains(t, res.stderr, "Camera is not available")
}

func TestScanReadsCameraDecoder(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	configPath, _ := writeConfig(t, `capture:
  command: sh
  args: ["-c", "printf 'C3\\n'"]
`)

	res := execute(t, configPath, "", "scan", "--camera", "--name", "Desk")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "C3\tDesk\t"))
}

func TestScanCameraCommandWithoutCamera(t *testing.T) {
	configPath, _ := writeConfig(t)

	res := execute(t, configPath, ":camera\n", "scan")
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "Camera is not enabled")
}

func TestConfigPathAndSave(t *testing.T) {
	configPath, _ := writeConfig(t, "capture:\n  cooldown: 750ms\n")

	res := execute(t, configPath, "", "config", "path")
	require.NoError(t, res.err)
	assert.Equal(t, configPath+"\n", res.stdout)

	saved := filepath.Join(t.TempDir(), "saved.yaml")
	res = execute(t, configPath, "", "config", "save", saved, "--memory")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, saved)

	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cooldown: 750ms")
	assert.Contains(t, string(data), "memory: true", "flag overrides are saved")

	res = execute(t, saved, "", "register", "A1")
	require.NoError(t, res.err, "a saved file loads again")
}

func TestMemoryFlagSkipsDatabase(t *testing.T) {
	configPath, dataDir := writeConfig(t)

	res := execute(t, configPath, "", "register", "A1", "--memory")
	require.NoError(t, res.err)

	_, err := os.Stat(filepath.Join(dataDir, "qrregister.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestVersion(t *testing.T) {
	res := execute(t, "unused.yaml", "", "version")
	require.NoError(t, res.err)
	assert.Equal(t, "qrregister 1.2.3 (built 2024-01-15)\n", res.stdout)
}
