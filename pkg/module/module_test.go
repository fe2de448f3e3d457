package module_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quillsign/quill/pkg/module"
)

func echoPathHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, r.PathValue("id"))
	})
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "root")
	})
	return mux
}

func TestModulePrefixValidation(t *testing.T) {
	tests := []struct {
		name      string
		prefix    string
		wantPanic bool
	}{
		{"valid", "/api", false},
		{"empty", "", true},
		{"missing slash", "api", true},
		{"multi-level", "/api/v1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				recovered := recover()
				if tt.wantPanic && recovered == nil {
					t.Errorf("New(%q) did not panic", tt.prefix)
				}
				if !tt.wantPanic && recovered != nil {
					t.Errorf("New(%q) panicked: %v", tt.prefix, recovered)
				}
			}()
			module.New(tt.prefix, echoPathHandler())
		})
	}
}

func TestModuleServe(t *testing.T) {
	m := module.New("/api", echoPathHandler())

	t.Run("strips prefix before dispatch", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/documents/doc-1", nil)
		rec := httptest.NewRecorder()
		m.Serve(rec, req)

		if rec.Body.String() != "doc-1" {
			t.Errorf("body = %q, want doc-1", rec.Body.String())
		}
	})

	t.Run("bare prefix resolves to root", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api", nil)
		rec := httptest.NewRecorder()
		m.Serve(rec, req)

		if rec.Body.String() != "root" {
			t.Errorf("body = %q, want root", rec.Body.String())
		}
	})

	t.Run("original request path untouched", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/documents/doc-1", nil)
		rec := httptest.NewRecorder()
		m.Serve(rec, req)

		if req.URL.Path != "/api/documents/doc-1" {
			t.Errorf("request path mutated: %s", req.URL.Path)
		}
	})
}

func TestModuleMiddleware(t *testing.T) {
	m := module.New("/api", echoPathHandler())

	var order []string
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "first")
			next.ServeHTTP(w, r)
		})
	})
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "second")
			next.ServeHTTP(w, r)
		})
	})

	req := httptest.NewRequest("GET", "/api/documents/doc-1", nil)
	rec := httptest.NewRecorder()
	m.Serve(rec, req)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("middleware order = %v", order)
	}
}

func TestRouter(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", echoPathHandler()))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})

	t.Run("dispatches to mounted module", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/documents/doc-1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Body.String() != "doc-1" {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("trailing slash normalized", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/documents/doc-1/", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Body.String() != "doc-1" {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("falls back to native mux", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/healthz", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Body.String() != "ok" {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("unmatched path is 404", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/missing", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}
