// Package handler provides the HTTP handlers for the database server.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rwStasiuk/JSON-Database-Engine-Project/jsondb"
	"github.com/rwStasiuk/JSON-Database-Engine-Project/store"
)

// Handler holds the server dependencies and registers routes.
type Handler struct {
	store store.Store
	mux   *http.ServeMux
}

// New creates a Handler and wires up all routes.
func New(s store.Store) *Handler {
	h := &Handler{store: s, mux: http.NewServeMux()}
	h.routes()
	return h
}

// ServeHTTP makes Handler an http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	// Health / status
	h.mux.HandleFunc("GET /", h.root)
	h.mux.HandleFunc("GET /health", h.health)
	h.mux.HandleFunc("GET /meta", h.meta)

	// Explicit persistence points
	h.mux.HandleFunc("POST /load", h.load)
	h.mux.HandleFunc("POST /save", h.save)

	// Collections
	h.mux.HandleFunc("GET /collections", h.listCollections)
	h.mux.HandleFunc("POST /collections/{collection}", h.addCollection)
	h.mux.HandleFunc("DELETE /collections/{collection}", h.deleteCollection)

	// Items
	h.mux.HandleFunc("GET /collections/{collection}/items", h.listItems)
	h.mux.HandleFunc("POST /collections/{collection}/items/{item}", h.addItem)
	h.mux.HandleFunc("GET /collections/{collection}/items/{item}", h.getItem)
	h.mux.HandleFunc("DELETE /collections/{collection}/items/{item}", h.deleteItem)

	// Values
	h.mux.HandleFunc("GET /collections/{collection}/items/{item}/values/{key}", h.getValue)
	h.mux.HandleFunc("PUT /collections/{collection}/items/{item}/values/{key}", h.setValue)
}

// ---------- helpers ----------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"detail": msg})
}

// writeStoreError maps the error taxonomy onto HTTP statuses and includes
// the stable numeric code in the body.
func writeStoreError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, jsondb.ErrLookUp), errors.Is(err, jsondb.ErrData):
		status = http.StatusNotFound
	case errors.Is(err, jsondb.ErrInsertion):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]any{
		"detail": errorDetail(err),
		"code":   jsondb.ErrorCode(err),
	})
}

// errorDetail strips the "[Error Code: n]" suffix by preferring the bare
// message; the code travels in its own field.
func errorDetail(err error) string {
	var dbErr *jsondb.Error
	if errors.As(err, &dbErr) {
		return dbErr.Message
	}
	return err.Error()
}

// ---------- status endpoints ----------

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	// Only match exact root path
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "JSON Database Engine",
	})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) meta(w http.ResponseWriter, _ *http.Request) {
	meta, err := h.store.Meta()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// ---------- persistence ----------

func (h *Handler) load(w http.ResponseWriter, _ *http.Request) {
	if err := h.store.Load(); err != nil {
		// A structurally invalid file is the caller's data problem, not
		// a server fault.
		if errors.Is(err, jsondb.ErrData) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"detail": errorDetail(err),
				"code":   jsondb.ErrorCode(err),
			})
			return
		}
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

func (h *Handler) save(w http.ResponseWriter, _ *http.Request) {
	if err := h.store.Save(); err != nil {
		writeStoreError(w, err)
		return
	}
	meta, err := h.store.Meta()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "saved", "meta": meta})
}

// ---------- collections ----------

func (h *Handler) listCollections(w http.ResponseWriter, _ *http.Request) {
	names, err := h.store.Collections()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (h *Handler) addCollection(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("collection")
	if err := h.store.AddCollection(name); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created", "collection": name})
}

func (h *Handler) deleteCollection(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("collection")
	if err := h.store.DeleteCollection(name); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "collection": name})
}

// ---------- items ----------

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.Items(r.PathValue("collection"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")
	item := r.PathValue("item")
	if err := h.store.AddItem(collection, item); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created", "item": item})
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Item(r.PathValue("collection"), r.PathValue("item"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")
	item := r.PathValue("item")
	if err := h.store.DeleteItem(collection, item); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "item": item})
}

// ---------- values ----------

func (h *Handler) getValue(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.GetValue(
		r.PathValue("collection"), r.PathValue("item"), r.PathValue("key"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": v})
}

func (h *Handler) setValue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value any `json:"value"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := h.store.SetValue(
		r.PathValue("collection"), r.PathValue("item"), r.PathValue("key"), req.Value,
	); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created", "key": r.PathValue("key")})
}
