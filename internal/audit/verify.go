package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jvs-project/reportstore/pkg/model"
)

// VerifyResult describes the state of an audit log's hash chain.
type VerifyResult struct {
	Records  int    `json:"records"`
	Valid    bool   `json:"valid"`
	BrokenAt int    `json:"broken_at,omitempty"` // 1-based line number
	Error    string `json:"error,omitempty"`
}

// Verify recomputes every record hash and checks that each record points at
// its predecessor. A missing log is valid and empty.
func Verify(path string) (*VerifyResult, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &VerifyResult{Valid: true}, nil
		}
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer file.Close()

	res := &VerifyResult{Valid: true}
	prev := ""
	line := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line++
		var record model.AuditRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			return res.broken(line, fmt.Sprintf("malformed record: %v", err)), nil
		}
		if record.PrevHash != prev {
			return res.broken(line, "prev_hash does not match previous record"), nil
		}
		want, err := computeRecordHash(&record)
		if err != nil {
			return nil, err
		}
		if record.RecordHash != want {
			return res.broken(line, "record_hash mismatch"), nil
		}
		prev = record.RecordHash
		res.Records++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan audit log: %w", err)
	}
	return res, nil
}

func (r *VerifyResult) broken(line int, msg string) *VerifyResult {
	r.Valid = false
	r.BrokenAt = line
	r.Error = msg
	return r
}
