package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwStasiuk/JSON-Database-Engine-Project/handler"
	"github.com/rwStasiuk/JSON-Database-Engine-Project/store"
)

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestStatusEndpoints(t *testing.T) {
	h := handler.New(store.NewMemoryStore())

	rec := doRequest(t, h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "JSON Database Engine", decode(t, rec)["service"])

	rec = doRequest(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/meta", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	meta := decode(t, rec)
	assert.Equal(t, float64(1), meta["version"])
}

func TestCollectionLifecycle(t *testing.T) {
	h := handler.New(store.NewMemoryStore())

	rec := doRequest(t, h, http.MethodPost, "/collections/users", "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/collections/users", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, float64(1005), decode(t, rec)["code"])

	rec = doRequest(t, h, http.MethodGet, "/collections", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["users"]`, rec.Body.String())

	rec = doRequest(t, h, http.MethodDelete, "/collections/users", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodDelete, "/collections/users", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, float64(1003), decode(t, rec)["code"])
}

func TestItemAndValueLifecycle(t *testing.T) {
	h := handler.New(store.NewMemoryStore())

	doRequest(t, h, http.MethodPost, "/collections/users", "")

	rec := doRequest(t, h, http.MethodPost, "/collections/users/items/alice", "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/collections/ghosts/items/alice", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, float64(1004), decode(t, rec)["code"])

	rec = doRequest(t, h, http.MethodPut,
		"/collections/users/items/alice/values/email", `{"value": "a@x.com"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Keys are write-once.
	rec = doRequest(t, h, http.MethodPut,
		"/collections/users/items/alice/values/email", `{"value": "b@x.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, float64(1005), decode(t, rec)["code"])

	rec = doRequest(t, h, http.MethodGet, "/collections/users/items/alice/values/email", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@x.com", decode(t, rec)["value"])

	rec = doRequest(t, h, http.MethodGet, "/collections/users/items/alice/values/phone", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, float64(1004), decode(t, rec)["code"])

	rec = doRequest(t, h, http.MethodGet, "/collections/users/items", "")
	assert.JSONEq(t, `["alice"]`, rec.Body.String())

	rec = doRequest(t, h, http.MethodGet, "/collections/users/items/alice", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@x.com", decode(t, rec)["email"])

	rec = doRequest(t, h, http.MethodDelete, "/collections/users/items/alice", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodDelete, "/collections/users/items/alice", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, float64(1003), decode(t, rec)["code"])
}

func TestSetValueRejectsBadJSON(t *testing.T) {
	h := handler.New(store.NewMemoryStore())
	doRequest(t, h, http.MethodPost, "/collections/users", "")
	doRequest(t, h, http.MethodPost, "/collections/users/items/alice", "")

	rec := doRequest(t, h, http.MethodPut,
		"/collections/users/items/alice/values/email", `{"value": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveAndLoadRoutes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")

	s, err := store.NewJsonFileStore(path)
	require.NoError(t, err)
	h := handler.New(s)

	doRequest(t, h, http.MethodPost, "/collections/users", "")
	doRequest(t, h, http.MethodPost, "/collections/users/items/alice", "")
	doRequest(t, h, http.MethodPut,
		"/collections/users/items/alice/values/email", `{"value": "a@x.com"}`)

	rec := doRequest(t, h, http.MethodPost, "/save", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// A fresh store over the same file sees the saved state after load.
	s2, err := store.NewJsonFileStore(path)
	require.NoError(t, err)
	h2 := handler.New(s2)

	rec = doRequest(t, h2, http.MethodPost, "/load", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h2, http.MethodGet, "/collections/users/items/alice/values/email", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@x.com", decode(t, rec)["value"])
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1, 2, 3]`), 0o644))

	s, err := store.NewJsonFileStore(path)
	require.NoError(t, err)
	h := handler.New(s)

	rec := doRequest(t, h, http.MethodPost, "/load", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, float64(1003), decode(t, rec)["code"])
}
