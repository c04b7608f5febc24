// Package audit records decision entries for state-mutating operations.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/jcmrs/warpos/internal/models"
	"github.com/jcmrs/warpos/internal/store"
)

// Writer appends audit entries for state-mutating actions such as template
// writes, instance generation, and plan transitions.
type Writer struct {
	store *store.Store
}

// NewWriter creates a new audit writer.
func NewWriter(s *store.Store) *Writer {
	return &Writer{store: s}
}

// Record writes an audit entry for a state-mutating action. A nil writer
// records nothing, so callers without an audit store stay unconditional.
func (w *Writer) Record(action string, inputs any, outcome, refID, details string) (*models.AuditEntry, error) {
	if w == nil || w.store == nil {
		return nil, nil
	}
	return w.store.WriteAudit(action, hashInputs(inputs), outcome, refID, details)
}

// IntentHash fingerprints an intent document's content.
func IntentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// hashInputs creates a SHA256 hash of the inputs for reproducibility.
func hashInputs(inputs any) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "hash_error"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
