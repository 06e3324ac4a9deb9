// Package site serves the prediction page.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/okian/homeval/internal/adapters/http/api"
	service "github.com/okian/homeval/internal/app"
	"github.com/okian/homeval/internal/domain/features"
	"github.com/okian/homeval/internal/presenter"
	"github.com/okian/homeval/pkg/logger"
)

// Error constants
var (
	ErrTemplate = errors.New("page template failed")
	ErrServe    = errors.New("page serve failed")
)

const maxFormBody = 16 << 10

// Dependencies renders page state.
type Dependencies interface {
	Page(ctx context.Context, sub service.Submission) presenter.View
}

// RootHandler renders the form and prediction results.
type RootHandler struct {
	deps   Dependencies
	tmpl   *template.Template
	logger logger.Logger
}

// NewRootHandler parses the embedded template.
func NewRootHandler(deps Dependencies) (*RootHandler, error) {
	tmpl, err := parsePage()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	return &RootHandler{deps: deps, tmpl: tmpl, logger: logger.Get().Named("site")}, nil
}

// Register attaches the page routes to mux.
func Register(_ context.Context, mux *http.ServeMux, deps Dependencies) error {
	if mux == nil {
		panic("mux is nil")
	}
	h, err := NewRootHandler(deps)
	if err != nil {
		return err
	}
	mux.HandleFunc("/", api.RequestIDMiddleware(api.MetricsMiddleware(h.HandleRoot, "page")))
	mux.HandleFunc("/predict", api.RequestIDMiddleware(api.MetricsMiddleware(h.HandlePredict, "page_predict")))
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(FS())))
	return nil
}

// HandleRoot handles GET / with the idle form.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.render(w, r, h.deps.Page(r.Context(), service.Submission{}))
}

// HandlePredict handles POST /predict from the form.
func (h *RootHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	view := h.deps.Page(r.Context(), service.Submission{
		Submitted: true,
		Lookup:    features.FromValues(r.PostForm),
		Prior:     presenter.ParsePrior(r.PostForm.Get("last")),
	})
	h.render(w, r, view)
}

func (h *RootHandler) render(w http.ResponseWriter, r *http.Request, view presenter.View) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, pageTemplate, view); err != nil {
		h.logger.Error(r.Context(), "render page", logger.Error(fmt.Errorf("%w: %w", ErrServe, err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	status := http.StatusOK
	if view.Fatal {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
