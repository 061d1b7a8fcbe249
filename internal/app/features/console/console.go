// internal/app/features/console/console.go
package console

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	errorsfeature "github.com/townlocal/minisite/internal/app/features/errors"
	sitenavstore "github.com/townlocal/minisite/internal/app/store/sitenav"
	sitepagestore "github.com/townlocal/minisite/internal/app/store/sitepages"
	"github.com/townlocal/minisite/internal/app/system/auth"
	"github.com/townlocal/minisite/internal/app/system/viewdata"
	"github.com/townlocal/minisite/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler provides the operator console: sign-in and the per-entity
// dashboard shell. The heavy editing itself goes through the site API.
type Handler struct {
	pages          *sitepagestore.Store
	nav            *sitenavstore.Store
	sessionMgr     *auth.SessionManager
	errLog         *errorsfeature.ErrorLogger
	passphraseHash string
	baseURL        string
	logger         *zap.Logger
}

// NewHandler creates a new console Handler. passphraseHash is the bcrypt
// hash of the operator passphrase from config; when empty, sign-in is
// disabled. baseURL, when set, prefixes public site links so they point
// at the public host.
func NewHandler(pages *sitepagestore.Store, nav *sitenavstore.Store, sessionMgr *auth.SessionManager, errLog *errorsfeature.ErrorLogger, passphraseHash, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		pages:          pages,
		nav:            nav,
		sessionMgr:     sessionMgr,
		errLog:         errLog,
		passphraseHash: passphraseHash,
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		logger:         logger,
	}
}

// Routes returns a chi.Router with the console mounted.
//
// When mounted at /console:
//   - GET  /console/login                      - sign-in form
//   - POST /console/login                      - sign in
//   - POST /console/logout                     - sign out
//   - GET  /console                            - entity picker
//   - GET  /console/{entityType}/{entityID}    - entity dashboard
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()

	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)

	r.Group(func(pr chi.Router) {
		pr.Use(sessionMgr.RequireOperator)
		pr.Get("/", h.showPicker)
		pr.Post("/logout", h.handleLogout)
		pr.Get("/open", h.openEntity)
		pr.Get("/{entityType}/{entityID}", h.showEntity)
	})

	return r
}

// LoginVM is the view model for the sign-in page.
type LoginVM struct {
	viewdata.BaseVM
	Error     string
	ReturnURL string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if h.sessionMgr.IsSignedIn(r) {
		http.Redirect(w, r, "/console", http.StatusSeeOther)
		return
	}
	vm := LoginVM{
		BaseVM:    viewdata.New(r),
		ReturnURL: query.Get(r, "return"),
	}
	vm.Title = "Sign in"
	templates.Render(w, r, "console/login", vm)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse login form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	returnURL := r.FormValue("return")
	renderError := func(msg string) {
		vm := LoginVM{
			BaseVM:    viewdata.New(r),
			Error:     msg,
			ReturnURL: returnURL,
		}
		vm.Title = "Sign in"
		templates.Render(w, r, "console/login", vm)
	}

	if h.passphraseHash == "" {
		h.logger.Warn("console sign-in attempted with no passphrase configured")
		renderError("Sign-in is not configured on this server.")
		return
	}

	passphrase := r.FormValue("passphrase")
	if passphrase == "" {
		renderError("Please enter the passphrase.")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.passphraseHash), []byte(passphrase)); err != nil {
		h.logger.Warn("console sign-in rejected")
		renderError("That passphrase is not correct.")
		return
	}

	if err := h.sessionMgr.SignIn(w, r); err != nil {
		h.errLog.Log(r, "failed to start operator session", err)
		renderError("Could not start a session. Please try again.")
		return
	}

	if returnURL == "" || returnURL[0] != '/' {
		returnURL = "/console"
	}
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessionMgr.SignOut(w, r)
	http.Redirect(w, r, "/console/login", http.StatusSeeOther)
}

// PickerVM is the view model for the entity picker.
type PickerVM struct {
	viewdata.BaseVM
	EntityTypes []string
}

// entityTypes offered by the picker. Any type can also be opened directly
// by URL; this list only seeds the form.
var entityTypes = []string{
	"restaurant", "cafe", "bakery", "church", "school", "attraction", "shop",
}

func (h *Handler) showPicker(w http.ResponseWriter, r *http.Request) {
	vm := PickerVM{
		BaseVM:      viewdata.New(r),
		EntityTypes: entityTypes,
	}
	vm.Title = "Console"
	vm.IsOperator = true
	templates.Render(w, r, "console/picker", vm)
}

// openEntity redirects the picker form to the entity dashboard.
func (h *Handler) openEntity(w http.ResponseWriter, r *http.Request) {
	entityType := r.URL.Query().Get("entity_type")
	entityID := r.URL.Query().Get("entity_id")
	if entityType == "" || entityID == "" {
		http.Redirect(w, r, "/console", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/console/"+entityType+"/"+entityID, http.StatusSeeOther)
}

// EntityVM is the view model for one entity's dashboard.
type EntityVM struct {
	viewdata.BaseVM
	EntityType     string
	EntityID       string
	Pages          []models.EntityPage
	Nav            []models.NavTreeNode
	TotalPages     int64
	PublishedPages int64
	NavItems       int64
	LinkTypes      []models.LinkType
	PublicURL      string
}

func (h *Handler) showEntity(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	entityID := chi.URLParam(r, "entityID")
	ref := models.EntityRef{EntityType: entityType, EntityID: entityID}

	pages, err := h.pages.ListByEntity(r.Context(), ref)
	if err != nil {
		h.errLog.Log(r, "failed to list pages", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	nav, err := h.nav.ListTree(r.Context(), ref)
	if err != nil {
		h.errLog.Log(r, "failed to list navigation", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	total, published, err := h.pages.Counts(r.Context(), ref)
	if err != nil {
		h.errLog.Log(r, "failed to count pages", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	navCount, err := h.nav.Count(r.Context(), ref)
	if err != nil {
		h.errLog.Log(r, "failed to count navigation items", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	vm := EntityVM{
		BaseVM:         viewdata.New(r),
		EntityType:     entityType,
		EntityID:       entityID,
		Pages:          pages,
		Nav:            nav,
		TotalPages:     total,
		PublishedPages: published,
		NavItems:       navCount,
		LinkTypes:      models.LinkTypesForEntity(entityType),
		PublicURL:      h.baseURL + "/site/" + entityType + "/" + entityID,
	}
	vm.Title = entityID
	vm.IsOperator = true
	templates.Render(w, r, "console/entity", vm)
}
