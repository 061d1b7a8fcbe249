package console

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	errorsfeature "github.com/townlocal/minisite/internal/app/features/errors"
	sitenavstore "github.com/townlocal/minisite/internal/app/store/sitenav"
	sitepagestore "github.com/townlocal/minisite/internal/app/store/sitepages"
	"github.com/townlocal/minisite/internal/app/system/auth"
	"github.com/townlocal/minisite/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testPassphrase = "correct horse battery staple"

type fixture struct {
	router http.Handler
	sm     *auth.SessionManager
	pages  *sitepagestore.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	testutil.MustBootTemplates(t)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassphrase), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sm := testutil.NewSessionManager(t)
	pages := sitepagestore.New(db, logger)
	nav := sitenavstore.New(db, logger)
	h := NewHandler(pages, nav, sm, errorsfeature.NewErrorLogger(logger), string(hash), "", logger)
	return &fixture{router: Routes(h, sm), sm: sm, pages: pages}
}

func (f *fixture) postLogin(t *testing.T, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = testutil.WithCSRFToken(req)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestLogin_ShowsForm(t *testing.T) {
	f := newFixture(t)

	req := testutil.WithCSRFToken(httptest.NewRequest(http.MethodGet, "/login", nil))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "passphrase") {
		t.Error("login page should ask for the passphrase")
	}
}

func TestLogin_WrongPassphrase(t *testing.T) {
	f := newFixture(t)

	rec := f.postLogin(t, url.Values{"passphrase": {"nope"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not correct") {
		t.Error("wrong passphrase should re-render the form with an error")
	}
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)

	rec := f.postLogin(t, url.Values{"passphrase": {testPassphrase}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/console" {
		t.Errorf("redirect = %q, want /console", loc)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("successful sign-in should set a session cookie")
	}
}

func TestLogin_ReturnURLMustBeLocal(t *testing.T) {
	f := newFixture(t)

	rec := f.postLogin(t, url.Values{
		"passphrase": {testPassphrase},
		"return":     {"https://evil.example.com/"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/console" {
		t.Errorf("redirect = %q, offsite return urls must be ignored", loc)
	}
}

func TestConsole_RequiresSession(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 to login", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/console/login") {
		t.Errorf("redirect = %q, want the login page", loc)
	}
}

func TestConsole_Picker(t *testing.T) {
	f := newFixture(t)

	req := testutil.OperatorRequestWithCSRF(t, f.sm, http.MethodGet, "/")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Mini-sites") {
		t.Error("picker page should list mini-sites")
	}
}

func TestConsole_EntityDashboard(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := f.pages.Create(ctx, sitepagestore.CreateInput{
		EntityType: "restaurant", EntityID: "rest-1",
		Title: "Lunch Menu", IsPublished: true,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	req := testutil.OperatorRequestWithCSRF(t, f.sm, http.MethodGet, "/restaurant/rest-1")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Lunch Menu") {
		t.Error("dashboard should list the entity's pages")
	}
	if !strings.Contains(body, "menu") {
		t.Error("dashboard should show the restaurant link types")
	}
}
