package support

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// AuditEntry is one line of the append-only run log under the output dir.
type AuditEntry struct {
	TimestampUtc string `json:"timestampUtc"`
	Mode         string `json:"mode"`
	Pass         bool   `json:"pass"`
	PassCount    int    `json:"passCount"`
	FailCount    int    `json:"failCount"`
	WarnCount    int    `json:"warnCount,omitempty"`
	ReportSHA    string `json:"report_hash,omitempty"`
	Result       string `json:"result,omitempty"`
}

// AppendAudit appends entry as one JSON line to <outputDir>/audit.log.
func AppendAudit(outputDir string, entry AuditEntry) error {
	entry.TimestampUtc = time.Now().UTC().Format(time.RFC3339)
	path := filepath.Join(outputDir, "audit.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}

// SHA256Hex returns the hex digest of data. Audit entries carry the
// digest of the written report so a run can be matched to its output.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
