package routes

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openjournal/journal-backend/internal/auth"
	"github.com/openjournal/journal-backend/internal/handlers"
	"github.com/openjournal/journal-backend/internal/repository"
	"github.com/openjournal/journal-backend/internal/services"
)

const tokenLifetime = 3600

func setupRouter() *chi.Mux {
	users := repository.NewMemoryUserRepository()
	journals := repository.NewMemoryJournalRepository()

	tokens := auth.NewTokenService("test-secret", tokenLifetime)
	authService := services.NewAuthService(users, tokens)
	journalService := services.NewJournalService(journals)

	r := chi.NewRouter()
	Setup(r, handlers.NewAuthHandler(authService), handlers.NewJournalHandler(journalService, nil), tokens, users)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func signupAndLogin(t *testing.T, r http.Handler, username string) (token string, userID string) {
	t.Helper()
	creds := map[string]string{"username": username, "password": "pw123456"}

	rec := doJSON(t, r, http.MethodPost, "/auth/signup", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, r, http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	token = body["accessToken"].(string)
	userID = body["user"].(map[string]interface{})["id"].(string)
	require.NotEmpty(t, token)
	return token, userID
}

func TestSignupLoginJournalOwnershipScenario(t *testing.T) {
	r := setupRouter()

	// Signup → 201 without password in the body
	rec := doJSON(t, r, http.MethodPost, "/auth/signup", "", map[string]string{
		"username": "a@b.com", "password": "pw123456",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	signupBody := decode(t, rec)
	assert.Equal(t, "a@b.com", signupBody["username"])
	assert.NotContains(t, rec.Body.String(), "password")

	// Duplicate signup → 409 with the shared error shape
	rec = doJSON(t, r, http.MethodPost, "/auth/signup", "", map[string]string{
		"username": "a@b.com", "password": "pw123456",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	conflictBody := decode(t, rec)
	assert.Equal(t, "Conflict", conflictBody["error"])
	assert.Equal(t, float64(http.StatusConflict), conflictBody["statusCode"])

	// Login → token with the configured lifetime
	rec = doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "a@b.com", "password": "pw123456",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	loginBody := decode(t, rec)
	token := loginBody["accessToken"].(string)
	assert.NotEmpty(t, token)
	assert.Equal(t, float64(tokenLifetime), loginBody["expiresIn"])
	userID := loginBody["user"].(map[string]interface{})["id"].(string)

	// Wrong password → bare 401
	rec = doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "a@b.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Create a journal; owner comes from the token, not the body
	rec = doJSON(t, r, http.MethodPost, "/journals", token, map[string]string{"title": "Trip"})
	require.Equal(t, http.StatusCreated, rec.Code)
	journalBody := decode(t, rec)
	journalID := journalBody["journalId"].(string)
	assert.Equal(t, userID, journalBody["userId"])

	// A different user's token → 403
	otherToken, _ := signupAndLogin(t, r, "other@b.com")
	rec = doJSON(t, r, http.MethodGet, "/journals/"+journalID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	forbiddenBody := decode(t, rec)
	assert.Equal(t, "Forbidden", forbiddenBody["error"])

	// The owner still reads it fine
	rec = doJSON(t, r, http.MethodGet, "/journals/"+journalID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJournalRoutesRequireToken(t *testing.T) {
	r := setupRouter()

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/journals"},
		{http.MethodGet, "/journals/all"},
		{http.MethodGet, "/journals/0123456789abcdef01234567"},
		{http.MethodDelete, "/journals/0123456789abcdef01234567"},
	} {
		rec := doJSON(t, r, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}

	// Health checks stay public
	rec := doJSON(t, r, http.MethodGet, "/journals/healthCheck", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJournalNotFoundBeforeForbidden(t *testing.T) {
	r := setupRouter()
	token, _ := signupAndLogin(t, r, "a@b.com")

	// Nonexistent id → 404 regardless of who asks
	rec := doJSON(t, r, http.MethodGet, "/journals/0123456789abcdef01234567", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodPatch, "/journals/0123456789abcdef01234567", token, map[string]string{"title": "X"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJournalUpdateAndDoubleDelete(t *testing.T) {
	r := setupRouter()
	token, _ := signupAndLogin(t, r, "a@b.com")

	rec := doJSON(t, r, http.MethodPost, "/journals", token, map[string]string{
		"title": "Trip", "description": "around the world",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	journalID := decode(t, rec)["journalId"].(string)

	// Partial update touches only the provided field
	rec = doJSON(t, r, http.MethodPatch, "/journals/"+journalID, token, map[string]string{"title": "Trip 2024"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Trip 2024", body["title"])
	assert.Equal(t, "around the world", body["description"])

	// First delete succeeds, second is gone
	rec = doJSON(t, r, http.MethodDelete, "/journals/"+journalID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, r, http.MethodDelete, "/journals/"+journalID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPageLifecycleOverHTTP(t *testing.T) {
	r := setupRouter()
	token, _ := signupAndLogin(t, r, "a@b.com")

	rec := doJSON(t, r, http.MethodPost, "/journals", token, map[string]string{"title": "Trip"})
	require.Equal(t, http.StatusCreated, rec.Code)
	journalID := decode(t, rec)["journalId"].(string)

	// Append two pages
	rec = doJSON(t, r, http.MethodPost, fmt.Sprintf("/journals/%s/pages", journalID), token, map[string]string{
		"title": "Day 1", "content": "sunny", "date": "2021-07-15T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = doJSON(t, r, http.MethodPost, fmt.Sprintf("/journals/%s/pages", journalID), token, map[string]string{
		"title": "Day 2", "date": "2021-07-16T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	pages := decode(t, rec)["pages"].([]interface{})
	require.Len(t, pages, 2)
	first := pages[0].(map[string]interface{})
	assert.Equal(t, "Day 1", first["title"])
	pageID := first["pageId"].(string)

	// Partial page update keeps content and date
	rec = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/journals/%s/pages/%s", journalID, pageID), token, map[string]string{"title": "X"})
	require.Equal(t, http.StatusOK, rec.Code)
	pages = decode(t, rec)["pages"].([]interface{})
	first = pages[0].(map[string]interface{})
	assert.Equal(t, "X", first["title"])
	assert.Equal(t, "sunny", first["content"])

	// Unknown page id is a page-level 404
	rec = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/journals/%s/pages/%s", journalID, "0123456789abcdef01234567"), token, map[string]string{"title": "X"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "page not found")

	// Delete the first page; the second remains
	rec = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/journals/%s/pages/%s", journalID, pageID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pages = decode(t, rec)["pages"].([]interface{})
	require.Len(t, pages, 1)
	assert.Equal(t, "Day 2", pages[0].(map[string]interface{})["title"])
}

func TestRefreshReturnsNewLoginResponse(t *testing.T) {
	r := setupRouter()
	token, userID := signupAndLogin(t, r, "a@b.com")

	rec := doJSON(t, r, http.MethodGet, "/auth/refresh", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.NotEmpty(t, body["accessToken"])
	assert.Equal(t, float64(tokenLifetime), body["expiresIn"])
	assert.Equal(t, userID, body["user"].(map[string]interface{})["id"])
}

func TestValidationErrors(t *testing.T) {
	r := setupRouter()
	token, _ := signupAndLogin(t, r, "a@b.com")

	rec := doJSON(t, r, http.MethodPost, "/journals", token, map[string]string{"title": "Trip"})
	require.Equal(t, http.StatusCreated, rec.Code)
	journalID := decode(t, rec)["journalId"].(string)

	tests := []struct {
		name string
		run  func() *httptest.ResponseRecorder
	}{
		{"signup without email-shaped username", func() *httptest.ResponseRecorder {
			return doJSON(t, r, http.MethodPost, "/auth/signup", "", map[string]string{"username": "nope", "password": "pw123456"})
		}},
		{"signup with short password", func() *httptest.ResponseRecorder {
			return doJSON(t, r, http.MethodPost, "/auth/signup", "", map[string]string{"username": "x@y.com", "password": "short"})
		}},
		{"journal without title", func() *httptest.ResponseRecorder {
			return doJSON(t, r, http.MethodPost, "/journals", token, map[string]string{"description": "no title"})
		}},
		{"journal patch with empty title", func() *httptest.ResponseRecorder {
			return doJSON(t, r, http.MethodPatch, "/journals/"+journalID, token, map[string]string{"title": "  "})
		}},
		{"page without date", func() *httptest.ResponseRecorder {
			return doJSON(t, r, http.MethodPost, fmt.Sprintf("/journals/%s/pages", journalID), token, map[string]string{"title": "Day 1"})
		}},
		{"page with bad date", func() *httptest.ResponseRecorder {
			return doJSON(t, r, http.MethodPost, fmt.Sprintf("/journals/%s/pages", journalID), token, map[string]string{"title": "Day 1", "date": "tomorrow"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.run()
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, "Bad Request", body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func doPhotoUpload(t *testing.T, r http.Handler, path, token, filename, mimeType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, filename))
	hdr.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func createJournalWithPage(t *testing.T, r http.Handler, token string) (journalID, pageID string) {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/journals", token, map[string]string{"title": "Trip"})
	require.Equal(t, http.StatusCreated, rec.Code)
	journalID = decode(t, rec)["journalId"].(string)

	rec = doJSON(t, r, http.MethodPost, fmt.Sprintf("/journals/%s/pages", journalID), token, map[string]string{
		"title": "Day 1", "date": "2021-07-15T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	pages := decode(t, rec)["pages"].([]interface{})
	pageID = pages[0].(map[string]interface{})["pageId"].(string)
	return journalID, pageID
}

func TestPagePhotoUploadStoresBytesAndMetadata(t *testing.T) {
	r := setupRouter()
	token, _ := signupAndLogin(t, r, "a@b.com")
	journalID, pageID := createJournalWithPage(t, r, token)

	photoBytes := []byte("\x89PNG\r\n\x1a\nfake-image-bytes")
	rec := doPhotoUpload(t, r, fmt.Sprintf("/journals/%s/pages/%s/photo", journalID, pageID), token, "sunset.png", "image/png", photoBytes)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	pages := decode(t, rec)["pages"].([]interface{})
	photo := pages[0].(map[string]interface{})["photo"].(map[string]interface{})
	assert.Equal(t, "sunset.png", photo["originalName"])
	assert.Equal(t, "image/png", photo["mimeType"])

	stored, err := base64.StdEncoding.DecodeString(photo["data"].(string))
	require.NoError(t, err)
	assert.Equal(t, photoBytes, stored, "stored bytes must round-trip exactly")
}

func TestPagePhotoUploadWithoutFile(t *testing.T) {
	r := setupRouter()
	token, _ := signupAndLogin(t, r, "a@b.com")
	journalID, pageID := createJournalWithPage(t, r, token)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("caption", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/journals/%s/pages/%s/photo", journalID, pageID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "photo file is required")
}

func TestPagePhotoUploadOversizeRejectedIntact(t *testing.T) {
	r := setupRouter()
	token, _ := signupAndLogin(t, r, "a@b.com")
	journalID, pageID := createJournalWithPage(t, r, token)

	// One byte over the 10 MiB cap must be rejected whole, never truncated
	oversized := make([]byte, 10<<20+1)
	rec := doPhotoUpload(t, r, fmt.Sprintf("/journals/%s/pages/%s/photo", journalID, pageID), token, "huge.png", "image/png", oversized)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Payload Too Large", body["error"])
	assert.Equal(t, float64(http.StatusRequestEntityTooLarge), body["statusCode"])

	// The page keeps no partial attachment
	rec = doJSON(t, r, http.MethodGet, "/journals/"+journalID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pages := decode(t, rec)["pages"].([]interface{})
	assert.NotContains(t, pages[0].(map[string]interface{}), "photo")
}

func TestPagePhotoUploadUnknownPage(t *testing.T) {
	r := setupRouter()
	token, _ := signupAndLogin(t, r, "a@b.com")
	journalID, _ := createJournalWithPage(t, r, token)

	rec := doPhotoUpload(t, r, fmt.Sprintf("/journals/%s/pages/%s/photo", journalID, "0123456789abcdef01234567"), token, "sunset.png", "image/png", []byte("bytes"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "page not found")
}
