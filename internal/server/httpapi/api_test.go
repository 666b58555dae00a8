package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/placekeeper/placekeeper/internal/common"
	"github.com/placekeeper/placekeeper/internal/dbx"
	"github.com/placekeeper/placekeeper/internal/logging"
	"github.com/placekeeper/placekeeper/internal/server/config"
	"github.com/placekeeper/placekeeper/internal/server/models"
	placesrepo "github.com/placekeeper/placekeeper/internal/server/repositories/places"
	usersrepo "github.com/placekeeper/placekeeper/internal/server/repositories/users"
	"github.com/placekeeper/placekeeper/internal/server/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- stateful in-memory fakes ---

type memUsersRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{byEmail: map[string]*models.User{}, byID: map[string]*models.User{}}
}

func (r *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if _, ok := r.byEmail[u.Email]; ok {
		return nil, common.ErrorEmailTaken
	}
	r.byEmail[u.Email] = u
	r.byID[u.ID] = u
	return u, nil
}

func (r *memUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (r *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type memPlacesRepo struct {
	byID map[string]*models.Place
}

func newMemPlacesRepo() *memPlacesRepo {
	return &memPlacesRepo{byID: map[string]*models.Place{}}
}

func (r *memPlacesRepo) Create(ctx context.Context, p *models.Place) (*models.Place, error) {
	r.byID[p.ID] = p
	return p, nil
}

func (r *memPlacesRepo) GetByID(ctx context.Context, id string) (*models.Place, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (r *memPlacesRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.Place, error) {
	var list []*models.Place
	for _, p := range r.byID {
		if p.OwnerID == ownerID {
			list = append(list, p)
		}
	}
	return list, nil
}

func (r *memPlacesRepo) Replace(ctx context.Context, id string, f *models.PlaceFields) error {
	p, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.Title, p.Address, p.Photos = f.Title, f.Address, f.Photos
	p.Description, p.Perks, p.ExtraInfo = f.Description, f.Perks, f.ExtraInfo
	p.CheckIn, p.CheckOut, p.MaxGuests = f.CheckIn, f.CheckOut, f.MaxGuests
	return nil
}

type memRepoManager struct {
	u *memUsersRepo
	p *memPlacesRepo
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *memRepoManager) Places(db dbx.DBTX) placesrepo.Repository     { return m.p }

type memPhotoStore struct {
	saved map[string]string
}

func (s *memPhotoStore) Save(ctx context.Context, name, contentType string, r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if s.saved == nil {
		s.saved = map[string]string{}
	}
	s.saved[name] = string(b)
	return nil
}

func (s *memPhotoStore) URL(ctx context.Context, name string) (string, error) {
	return "/uploads/" + name, nil
}

// --- harness ---

type apiTest struct {
	router *gin.Engine
	mock   sqlmock.Sqlmock
	store  *memPhotoStore
	rm     *memRepoManager
}

func newAPITest(t *testing.T) *apiTest {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()

	rm := &memRepoManager{u: newMemUsersRepo(), p: newMemPlacesRepo()}
	store := &memPhotoStore{}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	srv := NewServer(cfg, logger,
		services.NewUserService(db, rm, cfg),
		services.NewPlaceService(db, rm, cfg),
		services.NewPhotoService(store, cfg),
		"")

	return &apiTest{router: srv.Router(), mock: mock, store: store, rm: rm}
}

func (a *apiTest) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *apiTest) registerAndLogin(t *testing.T, name, email string) *http.Cookie {
	t.Helper()

	w := a.do(t, http.MethodPost, "/register", gin.H{"name": name, "email": email, "password": "password123"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status %d: %s", w.Code, w.Body.String())
	}

	w = a.do(t, http.MethodPost, "/login", gin.H{"email": email, "password": "password123"})
	if w.Code != http.StatusOK {
		t.Fatalf("login status %d: %s", w.Code, w.Body.String())
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == common.SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func placeBody(title string) gin.H {
	return gin.H{
		"title":     title,
		"address":   "1 Main St",
		"photos":    []string{"photo_abc.jpg"},
		"perks":     []string{"wifi"},
		"checkIn":   "14:00",
		"checkOut":  "11:00",
		"maxGuests": 2,
	}
}

// --- auth endpoints ---

func TestRegister_DoesNotLeakPasswordHash(t *testing.T) {
	a := newAPITest(t)

	w := a.do(t, http.MethodPost, "/register", gin.H{"name": "John", "email": "john@example.com", "password": "password123"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	body := decodeJSON[map[string]any](t, w)
	if body["email"] != "john@example.com" {
		t.Errorf("unexpected body: %v", body)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("response leaks password material: %s", w.Body.String())
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	a := newAPITest(t)

	payload := gin.H{"name": "John", "email": "john@example.com", "password": "password123"}
	if w := a.do(t, http.MethodPost, "/register", payload); w.Code != http.StatusCreated {
		t.Fatalf("first register status %d", w.Code)
	}

	w := a.do(t, http.MethodPost, "/register", payload)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("want 422, got %d: %s", w.Code, w.Body.String())
	}
	if body := decodeJSON[map[string]any](t, w); body["code"] != "email_taken" {
		t.Errorf("unexpected error body: %v", body)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	a := newAPITest(t)

	w := a.do(t, http.MethodPost, "/register", gin.H{"email": "john@example.com"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("want 422, got %d", w.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	a := newAPITest(t)
	a.registerAndLogin(t, "John", "john@example.com")

	w := a.do(t, http.MethodPost, "/login", gin.H{"email": "john@example.com", "password": "wrong"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("want 422, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	a := newAPITest(t)

	w := a.do(t, http.MethodPost, "/login", gin.H{"email": "nobody@example.com", "password": "password123"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProfile_WithAndWithoutCookie(t *testing.T) {
	a := newAPITest(t)

	w := a.do(t, http.MethodGet, "/profile", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "null" {
		t.Errorf("want null without a cookie, got %q", w.Body.String())
	}

	cookie := a.registerAndLogin(t, "John", "john@example.com")

	w = a.do(t, http.MethodGet, "/profile", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeJSON[map[string]any](t, w)
	if body["name"] != "John" || body["email"] != "john@example.com" {
		t.Errorf("unexpected profile: %v", body)
	}
}

func TestProfile_TamperedCookie(t *testing.T) {
	a := newAPITest(t)

	w := a.do(t, http.MethodGet, "/profile", nil, &http.Cookie{Name: common.SessionCookieName, Value: "garbage"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProfile_AccountRemovedBehindCookie(t *testing.T) {
	a := newAPITest(t)
	cookie := a.registerAndLogin(t, "John", "john@example.com")

	// the cookie outlives the account
	user, err := a.rm.u.GetByEmail(context.Background(), "john@example.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	delete(a.rm.u.byEmail, user.Email)
	delete(a.rm.u.byID, user.ID)

	w := a.do(t, http.MethodGet, "/profile", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}
	if strings.TrimSpace(w.Body.String()) != "null" {
		t.Errorf("want null for a vanished account, got %q", w.Body.String())
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	a := newAPITest(t)
	cookie := a.registerAndLogin(t, "John", "john@example.com")

	w := a.do(t, http.MethodPost, "/logout", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == common.SessionCookieName && c.Value == "" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout did not clear the session cookie")
	}
}

// --- places endpoints ---

func TestPlaces_RequireAuth(t *testing.T) {
	a := newAPITest(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/places"},
		{http.MethodGet, "/places"},
		{http.MethodPut, "/places"},
	} {
		w := a.do(t, tc.method, tc.path, placeBody("Flat"))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: want 401, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestPlaces_CreateGetRoundTrip(t *testing.T) {
	a := newAPITest(t)
	cookie := a.registerAndLogin(t, "John", "john@example.com")

	w := a.do(t, http.MethodPost, "/places", placeBody("Cozy flat"), cookie)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", w.Code, w.Body.String())
	}
	created := decodeJSON[models.Place](t, w)
	if created.ID == "" || created.OwnerID == "" {
		t.Fatalf("created place missing ids: %+v", created)
	}

	w = a.do(t, http.MethodGet, "/places/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status %d: %s", w.Code, w.Body.String())
	}
	got := decodeJSON[models.Place](t, w)
	if got.Title != "Cozy flat" || got.OwnerID != created.OwnerID {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestPlaces_GetUnknownID(t *testing.T) {
	a := newAPITest(t)

	w := a.do(t, http.MethodGet, "/places/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
}

func TestPlaces_ListOnlyOwn(t *testing.T) {
	a := newAPITest(t)
	alice := a.registerAndLogin(t, "Alice", "alice@example.com")
	bob := a.registerAndLogin(t, "Bob", "bob@example.com")

	if w := a.do(t, http.MethodPost, "/places", placeBody("Alice's flat"), alice); w.Code != http.StatusCreated {
		t.Fatalf("create status %d", w.Code)
	}
	if w := a.do(t, http.MethodPost, "/places", placeBody("Bob's cabin"), bob); w.Code != http.StatusCreated {
		t.Fatalf("create status %d", w.Code)
	}

	w := a.do(t, http.MethodGet, "/places", nil, alice)
	if w.Code != http.StatusOK {
		t.Fatalf("list status %d: %s", w.Code, w.Body.String())
	}
	list := decodeJSON[[]models.Place](t, w)
	if len(list) != 1 || list[0].Title != "Alice's flat" {
		t.Errorf("expected only Alice's place, got %+v", list)
	}
}

func TestPlaces_UpdateByOwner(t *testing.T) {
	a := newAPITest(t)
	cookie := a.registerAndLogin(t, "John", "john@example.com")

	w := a.do(t, http.MethodPost, "/places", placeBody("Old title"), cookie)
	created := decodeJSON[models.Place](t, w)

	a.mock.ExpectBegin()
	a.mock.ExpectCommit()

	body := placeBody("New title")
	body["id"] = created.ID
	w = a.do(t, http.MethodPut, "/places", body, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("update status %d: %s", w.Code, w.Body.String())
	}

	w = a.do(t, http.MethodGet, "/places/"+created.ID, nil)
	if got := decodeJSON[models.Place](t, w); got.Title != "New title" {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestPlaces_UpdateByNonOwner(t *testing.T) {
	a := newAPITest(t)
	alice := a.registerAndLogin(t, "Alice", "alice@example.com")
	bob := a.registerAndLogin(t, "Bob", "bob@example.com")

	w := a.do(t, http.MethodPost, "/places", placeBody("Alice's flat"), alice)
	created := decodeJSON[models.Place](t, w)

	a.mock.ExpectBegin()
	a.mock.ExpectRollback()

	body := placeBody("Hijacked")
	body["id"] = created.ID
	w = a.do(t, http.MethodPut, "/places", body, bob)
	if w.Code != http.StatusForbidden {
		t.Fatalf("want 403, got %d: %s", w.Code, w.Body.String())
	}

	w = a.do(t, http.MethodGet, "/places/"+created.ID, nil)
	if got := decodeJSON[models.Place](t, w); got.Title != "Alice's flat" {
		t.Errorf("non-owner update leaked through: %+v", got)
	}
}

func TestPlaces_UpdateUnknownID(t *testing.T) {
	a := newAPITest(t)
	cookie := a.registerAndLogin(t, "John", "john@example.com")

	a.mock.ExpectBegin()
	a.mock.ExpectRollback()

	body := placeBody("Whatever")
	body["id"] = "missing"
	w := a.do(t, http.MethodPut, "/places", body, cookie)
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d: %s", w.Code, w.Body.String())
	}
}

// --- photo endpoints ---

func TestUploadByLink_Success(t *testing.T) {
	a := newAPITest(t)

	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpegbytes"))
	}))
	defer remote.Close()

	w := a.do(t, http.MethodPost, "/upload-by-link", gin.H{"link": remote.URL + "/pic.jpg"})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	name := decodeJSON[string](t, w)
	if !strings.HasPrefix(name, "photo_") {
		t.Errorf("unexpected filename %q", name)
	}
	if a.store.saved[name] != "jpegbytes" {
		t.Errorf("photo not stored under %q", name)
	}
}

func TestUploadByLink_UnreachableURL(t *testing.T) {
	a := newAPITest(t)

	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	remote.Close()

	w := a.do(t, http.MethodPost, "/upload-by-link", gin.H{"link": remote.URL + "/pic.jpg"})
	if w.Code != http.StatusConflict {
		t.Fatalf("want 409, got %d: %s", w.Code, w.Body.String())
	}
	if len(a.store.saved) != 0 {
		t.Error("no file should be stored on a failed fetch")
	}
}

func TestUpload_Multipart(t *testing.T) {
	a := newAPITest(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i, name := range []string{"one.jpg", "two.png"} {
		fw, err := mw.CreateFormFile("photos", name)
		if err != nil {
			t.Fatalf("multipart: %v", err)
		}
		fmt.Fprintf(fw, "content-%d", i)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	names := decodeJSON[[]string](t, w)
	if len(names) != 2 {
		t.Fatalf("want 2 filenames, got %v", names)
	}
	if !strings.HasSuffix(names[0], ".jpg") || !strings.HasSuffix(names[1], ".png") {
		t.Errorf("extensions not preserved: %v", names)
	}
	if a.store.saved[names[0]] != "content-0" || a.store.saved[names[1]] != "content-1" {
		t.Errorf("stored content mismatch: %v", a.store.saved)
	}
}

func TestUpload_NoFiles(t *testing.T) {
	a := newAPITest(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("want 422, got %d: %s", w.Code, w.Body.String())
	}
}

// --- CORS ---

func TestCORS_PreflightAndHeaders(t *testing.T) {
	a := newAPITest(t)

	req := httptest.NewRequest(http.MethodOptions, "/places", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("unexpected allow-origin %q", got)
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("credentials must be allowed for cookie auth")
	}
}
