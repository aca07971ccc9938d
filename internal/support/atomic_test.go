package support

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	require.NoError(t, WriteFileAtomic(path, []byte("first")))
	require.NoError(t, WriteFileAtomic(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestStripBOM(t *testing.T) {
	assert.Equal(t, []byte("{}"), StripBOM([]byte("\xef\xbb\xbf{}")))
	assert.Equal(t, []byte("{}"), StripBOM([]byte("{}")))
	assert.Empty(t, StripBOM([]byte("\xef\xbb\xbf")))
}

func TestAppendAudit(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, AppendAudit(dir, AuditEntry{Mode: "check", Pass: true, PassCount: 20}))
	require.NoError(t, AppendAudit(dir, AuditEntry{Mode: "check", Pass: false, FailCount: 2}))

	data, err := os.ReadFile(filepath.Join(dir, "audit.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry AuditEntry
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.False(t, entry.Pass)
	assert.Equal(t, 2, entry.FailCount)
	assert.NotEmpty(t, entry.TimestampUtc)
}

func TestSHA256Hex(t *testing.T) {
	assert.Len(t, SHA256Hex([]byte("abc")), 64)
	assert.Equal(t, SHA256Hex([]byte("abc")), SHA256Hex([]byte("abc")))
	assert.NotEqual(t, SHA256Hex([]byte("abc")), SHA256Hex([]byte("abd")))
}
