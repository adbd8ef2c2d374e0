package api

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/tendant/demo-content/pkg/democontent"
)

// Form fields posted by the admin page
const (
	FieldAction = "demo_action"
	FieldNonce  = "demo_nonce"
)

// Handler serves the demo-content admin page and JSON API
type Handler struct {
	service    democontent.Service
	auth       *Auth
	authorizer democontent.Authorizer
	logger     *slog.Logger
}

// NewHandler creates a new demo-content handler
func NewHandler(service democontent.Service, auth *Auth, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:    service,
		auth:       auth,
		authorizer: democontent.ContextAuthorizer{},
		logger:     logger,
	}
}

// Routes returns the admin and API routes on a new router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

// Register adds the admin and API routes to r. Every route requires a
// verified access token. The admin page accepts the "jwt" cookie and guards
// its actions with a nonce; the JSON API only takes a bearer header.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verifier())
		r.Use(jwtauth.Authenticator)
		r.Use(Capabilities)

		r.Get("/admin/demo-content", h.AdminPage)
		r.Post("/admin/demo-content", h.AdminAction)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.auth.HeaderVerifier())
		r.Use(jwtauth.Authenticator)
		r.Use(Capabilities)

		r.Post("/api/v1/demo-content/import", h.Import)
		r.Post("/api/v1/demo-content/remove", h.Remove)
	})
}

// ErrorResponse is the JSON body of a failed API call
type ErrorResponse struct {
	Error string `json:"error"`
}

// RemoveResponse is the JSON body of a removal
type RemoveResponse struct {
	Removed int `json:"removed"`
}

// Import runs an import and returns its ImportResult
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.RunImport(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, democontent.ErrPermissionDenied) {
			status = http.StatusForbidden
		}
		h.logger.Error("Demo import failed", "error", err)
		render.Status(r, status)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
		return
	}

	render.JSON(w, r, result)
}

// Remove deletes demo content and reports how many items went
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	if !h.authorizer.Can(r.Context(), democontent.CapabilityManageOptions) {
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, ErrorResponse{Error: democontent.ErrPermissionDenied.Error()})
		return
	}

	removed := h.service.RemoveDemoContent(r.Context())
	render.JSON(w, r, RemoveResponse{Removed: removed})
}

type notice struct {
	Message string
	IsError bool
}

type adminPage struct {
	Title       string
	Description string
	Nonce       string
	Notice      *notice
}

var adminTemplate = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<div class="wrap">
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
{{with .Notice}}<div class="notice {{if .IsError}}notice-error{{else}}notice-success{{end}}"><p>{{.Message}}</p></div>
{{end}}<form method="post" style="margin-top:16px;">
<input type="hidden" name="demo_nonce" value="{{.Nonce}}" />
<input type="hidden" name="demo_action" value="import" />
<button type="submit" class="button button-primary">Run Import</button>
</form>
<form method="post" style="margin-top:12px;">
<input type="hidden" name="demo_nonce" value="{{.Nonce}}" />
<input type="hidden" name="demo_action" value="remove" />
<button type="submit" class="button delete">Remove Demo Content</button>
</form>
</div>
</body>
</html>
`))

// AdminPage renders the admin page
func (h *Handler) AdminPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, nil)
}

// AdminAction handles the admin page forms
func (h *Handler) AdminAction(w http.ResponseWriter, r *http.Request) {
	if !h.authorizer.Can(r.Context(), democontent.CapabilityManageOptions) {
		http.Error(w, "You do not have permission to access this page.", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	if err := h.auth.VerifyNonce(r.PostFormValue(FieldNonce), NonceAction, subjectFromRequest(r)); err != nil {
		h.logger.Warn("Rejected admin form", "error", err)
		http.Error(w, "The link you followed has expired.", http.StatusForbidden)
		return
	}

	var n *notice
	switch r.PostFormValue(FieldAction) {
	case "import":
		result, err := h.service.RunImport(r.Context())
		if err != nil {
			n = &notice{Message: democontent.ErrorNotice(err), IsError: true}
		} else {
			n = &notice{Message: democontent.ImportNotice(result)}
		}
	case "remove":
		n = &notice{Message: democontent.RemovalNotice(h.service.RemoveDemoContent(r.Context()))}
	}

	h.renderPage(w, r, n)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, n *notice) {
	if !h.authorizer.Can(r.Context(), democontent.CapabilityManageOptions) {
		http.Error(w, "You do not have permission to access this page.", http.StatusForbidden)
		return
	}

	nonce, err := h.auth.IssueNonce(NonceAction, subjectFromRequest(r))
	if err != nil {
		h.logger.Error("Failed to issue nonce", "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	page := adminPage{
		Title:       "Demo Content",
		Description: "Create demo pages, posts, menus, and images for local development. Safe to run multiple times; it will not duplicate content.",
		Nonce:       nonce,
		Notice:      n,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := adminTemplate.Execute(w, page); err != nil {
		h.logger.Error("Failed to render admin page", "error", err)
	}
}
