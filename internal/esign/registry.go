package esign

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Registry owns the authoritative map from document identifier to
// DocumentState and is the only mutation point for workflow state. All
// mutation is read-modify-write: Get returns a full copy, callers mutate it,
// and Save overwrites the stored record keyed by DocumentID.
type Registry interface {
	// Create registers a new document. Fails if the identifier is already taken.
	Create(ctx context.Context, doc DocumentState) error
	// Get returns a copy of the document state, or ErrNotFound.
	Get(ctx context.Context, documentID string) (DocumentState, error)
	// FindByProviderID returns the first document whose ProviderTemplateID or
	// DocumentID matches. Identifiers are expected unique; a linear scan is
	// acceptable at registry cardinality.
	FindByProviderID(ctx context.Context, providerID string) (DocumentState, bool)
	// Save overwrites the stored state keyed by DocumentID. Idempotent.
	Save(ctx context.Context, doc DocumentState) error
	// List returns a snapshot copy of every registered document.
	List(ctx context.Context) []DocumentState
}

type memoryRegistry struct {
	mu   sync.RWMutex
	docs map[string]DocumentState
}

// NewRegistry creates an in-memory Registry. Entries live until process
// teardown; there is no persistence across restarts.
func NewRegistry() Registry {
	return &memoryRegistry{
		docs: make(map[string]DocumentState),
	}
}

func (r *memoryRegistry) Create(_ context.Context, doc DocumentState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.docs[doc.DocumentID]; exists {
		return fmt.Errorf("document %s already registered", doc.DocumentID)
	}

	r.docs[doc.DocumentID] = clone(doc)
	return nil
}

func (r *memoryRegistry) Get(_ context.Context, documentID string) (DocumentState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[documentID]
	if !ok {
		return DocumentState{}, ErrNotFound
	}
	return clone(doc), nil
}

func (r *memoryRegistry) FindByProviderID(_ context.Context, providerID string) (DocumentState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, doc := range r.docs {
		if doc.ProviderTemplateID == providerID || doc.DocumentID == providerID {
			return clone(doc), true
		}
	}
	return DocumentState{}, false
}

func (r *memoryRegistry) Save(_ context.Context, doc DocumentState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.docs[doc.DocumentID] = clone(doc)
	return nil
}

func (r *memoryRegistry) List(_ context.Context) []DocumentState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]DocumentState, 0, len(r.docs))
	for _, doc := range r.docs {
		docs = append(docs, clone(doc))
	}
	return docs
}

// clone deep-copies the pointer-valued fields so stored state can only change
// through Save.
func clone(doc DocumentState) DocumentState {
	if doc.Tags != nil {
		tags := Tags{Widgets: slices.Clone(doc.Tags.Widgets)}
		doc.Tags = &tags
	}
	if doc.Signers != nil {
		signers := *doc.Signers
		doc.Signers = &signers
	}
	if doc.PageCount != nil {
		count := *doc.PageCount
		doc.PageCount = &count
	}
	return doc
}
