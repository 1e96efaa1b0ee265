package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rl1809/inventory-api/internal/core/domain"
	"github.com/rl1809/inventory-api/internal/core/service"
	"github.com/rl1809/inventory-api/internal/port"
)

type HTTPHandler struct {
	items  *service.ItemService
	auth   *service.AuthService
	tokens port.TokenIssuer
}

func NewHTTPHandler(items *service.ItemService, auth *service.AuthService, tokens port.TokenIssuer) *HTTPHandler {
	return &HTTPHandler{items: items, auth: auth, tokens: tokens}
}

// Routes wires the full HTTP surface. Item endpoints sit behind bearer-token
// auth; the auth and health endpoints do not.
func (h *HTTPHandler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("POST /auth/register/{$}", h.Register)
	mux.HandleFunc("POST /auth/login/{$}", h.Login)
	mux.HandleFunc("POST /auth/refresh/{$}", h.Refresh)

	mux.Handle("GET /items/{$}", h.requireAuth(h.ListItems))
	mux.Handle("POST /items/{$}", h.requireAuth(h.CreateItem))
	mux.Handle("GET /items/{id}/{$}", h.requireAuth(h.GetItem))
	mux.Handle("PUT /items/{id}/{$}", h.requireAuth(h.UpdateItem))
	mux.Handle("DELETE /items/{id}/{$}", h.requireAuth(h.DeleteItem))

	var routes http.Handler = mux
	routes = loggingMiddleware(routes)
	routes = requestIDMiddleware(routes)
	routes = recoverMiddleware(routes)
	return routes
}

// itemJSON is the wire representation of an item.
type itemJSON struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

func toItemJSON(it domain.Item) itemJSON {
	return itemJSON{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Quantity:    it.Quantity,
		Price:       it.Price,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "username, password, and email are required")
		return
	}

	err := h.auth.Register(r.Context(), req.Username, req.Password, req.Email)
	if errors.Is(err, service.ErrUsernameTaken) {
		writeError(w, http.StatusBadRequest, "user already exists")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "user registered", "username", req.Username)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "user created successfully"})
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	pair, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access":  pair.Access,
		"refresh": pair.Refresh,
	})
}

func (h *HTTPHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	access, err := h.auth.Refresh(req.Refresh)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	// Empty list serializes as [], never null.
	out := make([]itemJSON, 0, len(items))
	for _, it := range items {
		out = append(out, toItemJSON(it))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	created, err := h.items.Create(r.Context(), item)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "item created", "item_id", created.ID)
	writeJSON(w, http.StatusCreated, toItemJSON(*created))
}

func (h *HTTPHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	item, err := h.items.Get(r.Context(), id)
	if errors.Is(err, service.ErrItemNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemJSON(*item))
}

func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	// Existence first: an unknown id is 404 even if the payload is also bad.
	if _, err := h.items.Get(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
		} else {
			h.internalError(w, r, err)
		}
		return
	}

	item, ok := h.decodeItem(w, r)
	if !ok {
		return
	}
	item.ID = id

	updated, err := h.items.Update(r.Context(), item)
	if errors.Is(err, service.ErrItemNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "item updated", "item_id", id)
	writeJSON(w, http.StatusOK, toItemJSON(*updated))
}

func (h *HTTPHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	err := h.items.Delete(r.Context(), id)
	if errors.Is(err, service.ErrItemNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "item deleted", "item_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// decodeItem parses and validates an item payload, writing the 400 response
// itself when validation fails.
func (h *HTTPHandler) decodeItem(w http.ResponseWriter, r *http.Request) (domain.Item, bool) {
	payload, fieldErrs := parseItemPayload(r)
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrs)
		return domain.Item{}, false
	}
	if payload == nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return domain.Item{}, false
	}
	return domain.Item{
		Name:        *payload.Name,
		Description: *payload.Description,
		Quantity:    *payload.Quantity,
		Price:       *payload.Price,
	}, true
}

func itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "item not found")
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
