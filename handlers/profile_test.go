package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/profilekit/profilekit/internal/models"
	"github.com/profilekit/profilekit/internal/password"
	"github.com/profilekit/profilekit/internal/tokens"
	"github.com/profilekit/profilekit/internal/users"
	"github.com/profilekit/profilekit/pkg/middleware"
	"github.com/stretchr/testify/require"
)

// fakeStorage implements Storage in memory.
type fakeStorage struct {
	objects map[string][]byte
	failUp  bool
}

func (f *fakeStorage) UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if f.failUp {
		return fmt.Errorf("upload rejected")
	}
	b, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = b
	return nil
}

func (f *fakeStorage) DownloadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	b, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such object %q", key)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

type profileFixture struct {
	router *gin.Engine
	repo   *users.MemoryRepository
	tokens *tokens.Service
	store  *fakeStorage
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := users.NewMemoryRepository()
	ts := tokens.NewService("profile-test-secret-32-bytes-xxxxx")
	svc := users.NewService(repo, ts)
	store := &fakeStorage{}

	r := gin.New()
	NewProfileHandler(svc, store).Register(r.Group("/"), middleware.AuthMiddleware(ts))
	return &profileFixture{router: r, repo: repo, tokens: ts, store: store}
}

func (f *profileFixture) seed(t *testing.T, email, username string, admin, public bool) *models.User {
	t.Helper()
	hash, err := password.Hash("pw")
	require.NoError(t, err)
	u, err := f.repo.Create(context.Background(), &models.User{
		Email:           email,
		Username:        username,
		Password:        hash,
		IsAdmin:         admin,
		IsProfilePublic: public,
	})
	require.NoError(t, err)
	return u
}

func (f *profileFixture) tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := f.tokens.Issue(u, time.Minute)
	require.NoError(t, err)
	return tok
}

func (f *profileFixture) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, body []byte) []map[string]interface{} {
	t.Helper()
	var envelope struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Data
}

func TestProfileList_RequiresToken(t *testing.T) {
	f := newProfileFixture(t)
	w := f.get(t, "/profile", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileList_NonAdminSeesOnlyPublic(t *testing.T) {
	f := newProfileFixture(t)
	viewer := f.seed(t, "viewer@x.com", "viewer", false, true)
	f.seed(t, "priv@x.com", "priv", false, false)

	w := f.get(t, "/profile", f.tokenFor(t, viewer))
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w.Body.Bytes())
	require.Len(t, data, 1)
	require.Equal(t, "viewer@x.com", data[0]["email"])

	// a hostile isProfilePublic=false filter is overridden, not honored
	w = f.get(t, "/profile?isProfilePublic=false", f.tokenFor(t, viewer))
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w.Body.Bytes())
	require.Len(t, data, 1)
	require.Equal(t, "viewer@x.com", data[0]["email"])
}

func TestProfileList_AdminSeesPrivate(t *testing.T) {
	f := newProfileFixture(t)
	admin := f.seed(t, "admin@x.com", "admin", true, true)
	f.seed(t, "priv@x.com", "priv", false, false)

	w := f.get(t, "/profile", f.tokenFor(t, admin))
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w.Body.Bytes())
	require.Len(t, data, 2)
	for _, rec := range data {
		require.NotContains(t, rec, "password")
	}
}

func TestProfileList_FilterAndPagination(t *testing.T) {
	f := newProfileFixture(t)
	admin := f.seed(t, "admin@x.com", "admin", true, true)
	f.seed(t, "b@x.com", "bob", false, true)
	f.seed(t, "c@x.com", "carol", false, true)

	w := f.get(t, "/profile?username=bob", f.tokenFor(t, admin))
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w.Body.Bytes())
	require.Len(t, data, 1)
	require.Equal(t, "bob", data[0]["username"])

	w = f.get(t, "/profile?sort=username&limit=2&offset=1", f.tokenFor(t, admin))
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w.Body.Bytes())
	require.Len(t, data, 2)
	require.Equal(t, "bob", data[0]["username"])
	require.Equal(t, "carol", data[1]["username"])
}

func TestProfileGet(t *testing.T) {
	f := newProfileFixture(t)
	u := f.seed(t, "a@x.com", "a", false, true)
	tok := f.tokenFor(t, u)

	w := f.get(t, "/profile/"+u.ID.Hex(), tok)
	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "a@x.com", envelope.Data["email"])
	require.NotContains(t, envelope.Data, "password")

	// malformed id fails without touching the store
	w = f.get(t, "/profile/not-an-id", tok)
	require.Equal(t, http.StatusNotFound, w.Code)

	// well-formed id with no record
	w = f.get(t, "/profile/aaaaaaaaaaaaaaaaaaaaaaaa", tok)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfilePatch(t *testing.T) {
	f := newProfileFixture(t)
	u := f.seed(t, "a@x.com", "a", false, true)
	tok := f.tokenFor(t, u)

	patch := func(id, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/profile/"+id, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		return w
	}

	w := patch("not-an-id", `{"name":"x"}`)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "Please check the id")

	w = patch(u.ID.Hex(), `{"name":"New Name","isProfilePublic":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Updated User")

	got, err := f.repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, "New Name", got.Name)
	require.False(t, got.IsProfilePublic)

	// attempts to patch isAdmin are dropped and behave like a miss
	w = patch(u.ID.Hex(), `{"isAdmin":true}`)
	require.Equal(t, http.StatusForbidden, w.Code)
	got, _ = f.repo.FindByID(context.Background(), u.ID)
	require.False(t, got.IsAdmin)
}

func TestProfileUpload(t *testing.T) {
	f := newProfileFixture(t)
	u := f.seed(t, "a@x.com", "a", false, true)
	tok := f.tokenFor(t, u)

	// no file part
	req := httptest.NewRequest(http.MethodPost, "/profile/upload", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Please upload a file")

	// multipart upload
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req = httptest.NewRequest(http.MethodPost, "/profile/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, strings.HasSuffix(resp.Data, "_avatar.png"), "key should end with the original filename: %q", resp.Data)
	require.Equal(t, []byte("png-bytes"), f.store.objects[resp.Data])
}

func TestProfileDownload(t *testing.T) {
	f := newProfileFixture(t)
	u := f.seed(t, "a@x.com", "a", false, true)
	tok := f.tokenFor(t, u)
	f.store.objects = map[string][]byte{"abc123_avatar.png": []byte("png-bytes")}

	// missing fileLocation
	w := f.get(t, "/profile/download", tok)
	require.Equal(t, http.StatusForbidden, w.Code)

	// unknown key
	w = f.get(t, "/profile/download?fileLocation=missing_key.bin", tok)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = f.get(t, "/profile/download?fileLocation=abc123_avatar.png", tok)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "png-bytes", w.Body.String())
	require.Contains(t, w.Header().Get("Content-Disposition"), `filename="avatar.png"`)
	require.Equal(t, "image/png", w.Header().Get("Content-Type"))
}
