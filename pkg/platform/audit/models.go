package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events so sinks can apply different retention.
type EventCategory string

const (
	// CategoryCompliance covers changes to personal data.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers privileged operations.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine reads.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted by the record service. It never carries the raw
// identifier; SubjectIDHash is the SHA-256 of it.
type Event struct {
	ID            uuid.UUID     `json:"id"`
	Category      EventCategory `json:"category"`
	Timestamp     time.Time     `json:"timestamp"`
	Action        string        `json:"action"`
	SubjectIDHash string        `json:"subject_id_hash,omitempty"`
	RequestID     string        `json:"request_id,omitempty"`
	ClientIP      string        `json:"client_ip,omitempty"`
}

type AuditEvent string

const (
	EventRecordSaved        AuditEvent = "record_saved"
	EventRecordLookedUp     AuditEvent = "record_looked_up"
	EventRecordLookupMissed AuditEvent = "record_lookup_missed"
	EventRecordsListed      AuditEvent = "records_listed"
	EventRecordsReloaded    AuditEvent = "records_reloaded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventRecordSaved:        CategoryCompliance,
	EventRecordsReloaded:    CategorySecurity,
	EventRecordsListed:      CategorySecurity,
	EventRecordLookedUp:     CategoryOperations,
	EventRecordLookupMissed: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// HashSubject returns the hex SHA-256 of an identifier for traceability without PII.
func HashSubject(subjectID string) string {
	if subjectID == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(subjectID))
	return hex.EncodeToString(sum[:])
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
