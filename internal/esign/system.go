package esign

import (
	"context"
	"io"

	"github.com/quillsign/quill/pkg/pagination"
)

// System defines the public contract for e-signature workflow operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Ingest persists an uploaded PDF and registers its workflow state.
	Ingest(ctx context.Context, cmd IngestCommand) (*DocumentState, error)
	// IngestBatch ingests multiple files concurrently, reporting per-file results.
	IngestBatch(ctx context.Context, cmds []IngestCommand) []BatchResult
	// Tag attaches signature-field placements and moves the document to tagged.
	Tag(ctx context.Context, documentID string, tags Tags) (*DocumentState, error)
	// Submit sends the document to the signing provider with a fixed-order
	// role sequence and moves it to submitted.
	Submit(ctx context.Context, documentID string, signers Signers) (*SubmitResult, error)
	// Reconcile folds an asynchronous provider webhook event into local state.
	// It always returns an acknowledgement; processing errors are absorbed.
	Reconcile(ctx context.Context, event WebhookEvent) Ack
	// Find returns the current workflow state. Read-only.
	Find(ctx context.Context, documentID string) (*DocumentState, error)
	// List returns a page of registered documents, newest first.
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[DocumentState], error)
	// Download streams the stored binary for preview. The caller must close
	// the reader.
	Download(ctx context.Context, documentID string) (io.ReadCloser, *DocumentState, error)
}
