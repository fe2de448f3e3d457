package esign_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/quillsign/quill/internal/esign"
	"github.com/quillsign/quill/internal/opensign"
	"github.com/quillsign/quill/pkg/lifecycle"
	"github.com/quillsign/quill/pkg/pagination"
	"github.com/quillsign/quill/pkg/storage"
)

var testPagination = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

// fakeStorage is an in-memory storage.System that counts reads and writes and
// can be forced to fail.
type fakeStorage struct {
	mu           sync.Mutex
	blobs        map[string][]byte
	uploads      int
	downloads    int
	failUpload   bool
	failDownload bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: make(map[string][]byte)}
}

func (f *fakeStorage) Start(*lifecycle.Coordinator) error { return nil }

func (f *fakeStorage) Upload(_ context.Context, key string, reader io.Reader, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.uploads++
	if f.failUpload {
		return errors.New("storage unavailable")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.blobs[key] = data
	return nil
}

func (f *fakeStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.downloads++
	if f.failDownload {
		return nil, errors.New("disk offline")
	}

	data, ok := f.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(f.blobs, key)
	return nil
}

func (f *fakeStorage) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.blobs[key]
	return ok, nil
}

func (f *fakeStorage) downloadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.downloads
}

// fakeProvider is an opensign.Client that records calls and returns a canned
// response or error.
type fakeProvider struct {
	mu      sync.Mutex
	calls   int
	lastReq opensign.TemplateRequest
	resp    *opensign.TemplateResponse
	err     error
}

func (f *fakeProvider) CreateTemplate(_ context.Context, req opensign.TemplateRequest) (*opensign.TemplateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.lastReq = req

	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// countingRegistry wraps a Registry to observe lookup activity.
type countingRegistry struct {
	esign.Registry
	mu    sync.Mutex
	gets  int
	finds int
}

func (r *countingRegistry) Get(ctx context.Context, id string) (esign.DocumentState, error) {
	r.mu.Lock()
	r.gets++
	r.mu.Unlock()
	return r.Registry.Get(ctx, id)
}

func (r *countingRegistry) FindByProviderID(ctx context.Context, providerID string) (esign.DocumentState, bool) {
	r.mu.Lock()
	r.finds++
	r.mu.Unlock()
	return r.Registry.FindByProviderID(ctx, providerID)
}

func (r *countingRegistry) lookups() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets + r.finds
}

// fakeUpdater implements esign.RecipientUpdater.
type fakeUpdater struct {
	mu     sync.Mutex
	calls  int
	lastID string
	role   string
	email  string
	err    error
}

func (f *fakeUpdater) UpdateRecipient(_ context.Context, templateID, role, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.lastID = templateID
	f.role = role
	f.email = email
	return f.err
}

type testEnv struct {
	sys      esign.System
	registry *countingRegistry
	storage  *fakeStorage
	provider *fakeProvider
	updater  *fakeUpdater
}

func newTestEnv(t *testing.T, updater esign.RecipientUpdater) *testEnv {
	t.Helper()

	env := &testEnv{
		registry: &countingRegistry{Registry: esign.NewRegistry()},
		storage:  newFakeStorage(),
		provider: &fakeProvider{resp: &opensign.TemplateResponse{ObjectID: "tmpl-1"}},
	}

	if fu, ok := updater.(*fakeUpdater); ok {
		env.updater = fu
	}

	env.sys = esign.New(
		env.registry,
		env.storage,
		env.provider,
		updater,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		testPagination,
	)
	return env
}

func (env *testEnv) ingest(t *testing.T) *esign.DocumentState {
	t.Helper()

	doc, err := env.sys.Ingest(t.Context(), esign.IngestCommand{
		Data:         []byte("%PDF-1.4 test content"),
		OriginalName: "contract.pdf",
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	return doc
}

func (env *testEnv) tag(t *testing.T, id string) *esign.DocumentState {
	t.Helper()

	doc, err := env.sys.Tag(t.Context(), id, esign.Tags{
		Widgets: []esign.Widget{{Type: "signature", Page: 1, X: 50, Y: 50}},
	})
	if err != nil {
		t.Fatalf("tag failed: %v", err)
	}
	return doc
}

func (env *testEnv) submit(t *testing.T, id string, signers esign.Signers) *esign.SubmitResult {
	t.Helper()

	result, err := env.sys.Submit(t.Context(), id, signers)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	return result
}

func (env *testEnv) status(t *testing.T, id string) esign.Status {
	t.Helper()

	doc, err := env.sys.Find(t.Context(), id)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	return doc.Status
}
