package esign

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/quillsign/quill/internal/opensign"
	"github.com/quillsign/quill/pkg/pagination"
	"github.com/quillsign/quill/pkg/storage"
)

const batchConcurrency = 4

type engine struct {
	registry   Registry
	storage    storage.System
	provider   opensign.Client
	recipients RecipientUpdater
	logger     *slog.Logger
	pagination pagination.Config
	locks      keyedLocks
}

// New creates the workflow engine implementing the System interface.
// recipients may be nil; the recipient-update seam is then logged as
// unpropagated rather than called.
func New(
	registry Registry,
	store storage.System,
	provider opensign.Client,
	recipients RecipientUpdater,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &engine{
		registry:   registry,
		storage:    store,
		provider:   provider,
		recipients: recipients,
		logger:     logger.With("system", "esign"),
		pagination: pagination,
	}
}

func (e *engine) Handler(maxUploadSize int64) *Handler {
	return NewHandler(e, e.logger, e.pagination, maxUploadSize)
}

func (e *engine) Ingest(ctx context.Context, cmd IngestCommand) (*DocumentState, error) {
	if len(cmd.Data) == 0 {
		return nil, ErrFileRequired
	}

	// The generated stored name is a UUID, so the derived document id is
	// unique for the registry's lifetime.
	storedName := uuid.NewString() + ".pdf"
	documentID := strings.TrimSuffix(storedName, ".pdf")
	key := buildStorageKey(storedName)

	if err := e.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), "application/pdf"); err != nil {
		return nil, fmt.Errorf("store uploaded document: %w", err)
	}

	now := time.Now().UTC()
	doc := DocumentState{
		DocumentID:   documentID,
		OriginalName: cmd.OriginalName,
		StoredName:   storedName,
		StoragePath:  key,
		PageCount:    cmd.PageCount,
		Status:       StatusUploaded,
		UploadedAt:   now,
		UpdatedAt:    now,
	}

	if err := e.registry.Create(ctx, doc); err != nil {
		if delErr := e.storage.Delete(ctx, key); delErr != nil {
			e.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("register document: %w", err)
	}

	e.logger.Info("document registered", "document_id", documentID, "filename", cmd.OriginalName)
	return &doc, nil
}

func (e *engine) IngestBatch(ctx context.Context, cmds []IngestCommand) []BatchResult {
	results := make([]BatchResult, len(cmds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for i, cmd := range cmds {
		g.Go(func() error {
			results[i].Filename = cmd.OriginalName

			doc, err := e.Ingest(ctx, cmd)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}

			results[i].Document = doc
			return nil
		})
	}

	// per-file failures are reported in results, never as a group error
	g.Wait()
	return results
}

func (e *engine) Tag(ctx context.Context, documentID string, tags Tags) (*DocumentState, error) {
	unlock := e.locks.acquire(documentID)
	defer unlock()

	doc, err := e.registry.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	// an absent widgets list is malformed; an empty one is accepted here and
	// re-checked at submission, so tagging can be iterative
	if tags.Widgets == nil {
		return nil, ErrInvalidTags
	}

	if !doc.Status.CanTransition(StatusTagged) {
		return nil, fmt.Errorf("tag document in status %s: %w", doc.Status, ErrInvalidTransition)
	}

	doc.Tags = &tags
	doc.Status = StatusTagged
	doc.UpdatedAt = time.Now().UTC()

	if err := e.registry.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save tagged document: %w", err)
	}

	e.logger.Info("tags added", "document_id", documentID, "widgets", len(tags.Widgets))
	return &doc, nil
}

func (e *engine) Submit(ctx context.Context, documentID string, signers Signers) (*SubmitResult, error) {
	unlock := e.locks.acquire(documentID)
	defer unlock()

	doc, err := e.registry.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if doc.Tags == nil || len(doc.Tags.Widgets) == 0 {
		return nil, ErrTagsRequired
	}

	if signers.Role1Email == "" {
		return nil, ErrSignerRequired
	}

	if !doc.Status.CanTransition(StatusSubmitted) {
		return nil, fmt.Errorf("submit document in status %s: %w", doc.Status, ErrInvalidTransition)
	}

	doc.Signers = &signers
	doc.PendingRoleEmail = signers.Role3Email

	data, err := e.readDocument(ctx, doc.StoragePath)
	if err != nil {
		e.fail(ctx, &doc)
		return nil, fmt.Errorf("read %s: %v: %w", doc.StoragePath, err, ErrStorage)
	}

	resp, err := e.provider.CreateTemplate(ctx, buildTemplateRequest(doc, data, signers))
	if err != nil {
		e.fail(ctx, &doc)
		return nil, fmt.Errorf("%w: %s", ErrSubmission, submissionCause(err))
	}

	doc.ProviderTemplateID = resp.ObjectID
	doc.Status = StatusSubmitted
	doc.UpdatedAt = time.Now().UTC()

	if err := e.registry.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save submitted document: %w", err)
	}

	e.logger.Info("document submitted", "document_id", documentID, "template_id", resp.ObjectID)
	return &SubmitResult{
		Success:    true,
		Message:    "document submitted successfully",
		TemplateID: resp.ObjectID,
	}, nil
}

func (e *engine) Find(ctx context.Context, documentID string) (*DocumentState, error) {
	doc, err := e.registry.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (e *engine) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[DocumentState], error) {
	page.Normalize(e.pagination)

	docs := e.registry.List(ctx)
	docs = filters.Apply(docs)

	if page.Search != nil {
		needle := strings.ToLower(*page.Search)
		docs = slicesFilter(docs, func(d DocumentState) bool {
			return strings.Contains(strings.ToLower(d.OriginalName), needle)
		})
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})

	result := pagination.NewPageResult(
		pagination.Slice(docs, page),
		len(docs),
		page.Page,
		page.PageSize,
	)
	return &result, nil
}

func (e *engine) Download(ctx context.Context, documentID string) (io.ReadCloser, *DocumentState, error) {
	doc, err := e.registry.Get(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := e.storage.Download(ctx, doc.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("binary for %s missing: %w", documentID, ErrStorage)
		}
		return nil, nil, fmt.Errorf("download %s: %v: %w", doc.StoragePath, err, ErrStorage)
	}

	return rc, &doc, nil
}

// fail marks the document failed and persists it. Terminal documents are left
// untouched.
func (e *engine) fail(ctx context.Context, doc *DocumentState) {
	if doc.Status.Terminal() {
		return
	}

	doc.Status = StatusFailed
	doc.UpdatedAt = time.Now().UTC()

	if err := e.registry.Save(ctx, *doc); err != nil {
		e.logger.Error("save failed document", "document_id", doc.DocumentID, "error", err)
	}
}

func (e *engine) readDocument(ctx context.Context, key string) ([]byte, error) {
	rc, err := e.storage.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// buildTemplateRequest constructs the provider payload. Roles are a
// fixed-length ordered sequence with sendInOrder set: the provider's signing
// order is positional. Role 2 falls back to a placeholder address and Role 3
// is intentionally blank until resolved via webhook data.
func buildTemplateRequest(doc DocumentState, data []byte, signers Signers) opensign.TemplateRequest {
	role2 := signers.Role2Email
	if role2 == "" {
		role2 = defaultRole2Email
	}

	widgets := make([]opensign.Widget, len(doc.Tags.Widgets))
	for i, w := range doc.Tags.Widgets {
		widgets[i] = opensign.Widget(w)
	}

	return opensign.TemplateRequest{
		File:        base64.StdEncoding.EncodeToString(data),
		Title:       fmt.Sprintf("Signing Request - %s (%s)", doc.OriginalName, doc.DocumentID),
		SendInOrder: true,
		Roles: []opensign.Role{
			{Role: RoleFirst, Email: signers.Role1Email, Name: "Role 1 Signer"},
			{Role: RoleSecond, Email: role2, Name: "Role 2 Signer"},
			{Role: RoleThird, Email: "", Name: "Role 3 Signer"},
		},
		Widgets: widgets,
	}
}

func buildStorageKey(storedName string) string {
	return "documents/" + storedName
}

// submissionCause extracts the best-available message for a provider failure:
// the provider-supplied message when present, otherwise the transport error.
func submissionCause(err error) string {
	var apiErr *opensign.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, opensign.ErrMalformedResponse) {
		return "unexpected response from signing service"
	}
	return err.Error()
}

func slicesFilter(docs []DocumentState, keep func(DocumentState) bool) []DocumentState {
	out := docs[:0:0]
	for _, d := range docs {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// keyedLocks serializes operations per document so concurrent transitions on
// one document cannot interleave their read-modify-write cycles. Locks are
// never released from the map; registry entries are never deleted either.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedLocks) acquire(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
