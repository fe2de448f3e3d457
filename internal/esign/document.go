// Package esign implements the e-signature workflow domain: document
// registration, signature-field tagging, submission to the external signing
// provider, and reconciliation of provider webhook events.
package esign

import (
	"slices"
	"time"
)

// Status is the workflow state of a document. The happy path is
// uploaded → tagged → submitted → partially_signed → completed; failed is
// reachable from any non-terminal state and is terminal.
type Status string

const (
	StatusUploaded        Status = "uploaded"
	StatusTagged          Status = "tagged"
	StatusSubmitted       Status = "submitted"
	StatusPartiallySigned Status = "partially_signed"
	StatusCompleted       Status = "completed"
	StatusFailed          Status = "failed"
)

// transitions enumerates the legal status edges. Re-tagging a tagged document
// and re-submitting a submitted document are permitted; regressions are not.
var transitions = map[Status][]Status{
	StatusUploaded:        {StatusTagged, StatusFailed},
	StatusTagged:          {StatusTagged, StatusSubmitted, StatusFailed},
	StatusSubmitted:       {StatusSubmitted, StatusPartiallySigned, StatusCompleted, StatusFailed},
	StatusPartiallySigned: {StatusCompleted, StatusFailed},
	StatusCompleted:       {},
	StatusFailed:          {},
}

// CanTransition reports whether moving from s to the target status is legal.
func (s Status) CanTransition(to Status) bool {
	return slices.Contains(transitions[s], to)
}

// Terminal reports whether s admits no further transitions.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Signer role names as the provider expects them. Order is positional: the
// provider has no role-name concept beyond array position.
const (
	RoleFirst  = "Role 1"
	RoleSecond = "Role 2"
	RoleThird  = "Role 3"
)

// defaultRole2Email is the placeholder address used when no second-role email
// is supplied at submission time.
const defaultRole2Email = "dummy-role2@example.com"

// Widget places a signature field on a document page.
type Widget struct {
	Type string  `json:"type"`
	Page int     `json:"page"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w,omitempty"`
	H    float64 `json:"h,omitempty"`
}

// Tags is the annotation payload attached to a document before submission.
// A nil Widgets slice means no list was supplied; an empty one is accepted at
// tag time and rejected at submission.
type Tags struct {
	Widgets []Widget `json:"widgets"`
}

// Signers records the role→email assignments supplied at submission time.
// Role3Email may be blank; the final signer can be resolved later from webhook
// data.
type Signers struct {
	Role1Email string `json:"role1Email"`
	Role2Email string `json:"role2Email,omitempty"`
	Role3Email string `json:"role3Email,omitempty"`
}

// DocumentState is the authoritative workflow record for one uploaded
// document. It is passed by value: callers read a full copy, mutate it, and
// save it back through the registry.
type DocumentState struct {
	DocumentID         string    `json:"document_id"`
	OriginalName       string    `json:"original_name"`
	StoredName         string    `json:"stored_name"`
	StoragePath        string    `json:"storage_path"`
	PageCount          *int      `json:"page_count,omitempty"`
	Tags               *Tags     `json:"tags,omitempty"`
	Signers            *Signers  `json:"signers,omitempty"`
	ProviderTemplateID string    `json:"provider_template_id,omitempty"`
	PendingRoleEmail   string    `json:"pending_role_email,omitempty"`
	Status             Status    `json:"status"`
	UploadedAt         time.Time `json:"uploaded_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IngestCommand carries the data needed to persist and register a new
// document. Data holds the raw PDF bytes. PageCount is optional and may be
// extracted by the caller via pdfcpu.
type IngestCommand struct {
	Data         []byte
	OriginalName string
	PageCount    *int
}

// BatchResult reports the outcome of a single file within a batch upload.
// On success, Document is populated and Error is empty.
type BatchResult struct {
	Document *DocumentState `json:"document,omitempty"`
	Filename string         `json:"filename"`
	Error    string         `json:"error,omitempty"`
}

// SubmitResult is returned from a successful submission.
type SubmitResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	TemplateID string `json:"template_id"`
}
