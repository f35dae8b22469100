package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/fusionmeals/internal/auth"
	"github.com/dukerupert/fusionmeals/internal/model"
	"github.com/dukerupert/fusionmeals/internal/pantry"
	"github.com/dukerupert/fusionmeals/internal/store"
	ws "github.com/dukerupert/fusionmeals/internal/websocket"
)

// DemoUserID owns the pantry of requests made without a session.
const DemoUserID = "sample_user_123"

type PantryHandler struct {
	service   *pantry.Service
	userStore *store.UserStore
	hub       *ws.Hub
	logger    *slog.Logger
}

func NewPantryHandler(svc *pantry.Service, us *store.UserStore, hub *ws.Hub, logger *slog.Logger) *PantryHandler {
	return &PantryHandler{service: svc, userStore: us, hub: hub, logger: logger}
}

func (h *PantryHandler) userID(r *http.Request) (string, error) {
	if id := auth.UserID(r.Context()); id != "" {
		return id, nil
	}
	if _, err := h.userStore.Ensure(DemoUserID); err != nil {
		return "", err
	}
	return DemoUserID, nil
}

func (h *PantryHandler) broadcast(userID, action string, item *model.PantryItem) {
	h.hub.BroadcastToUser(userID, ws.NewMessage("pantry_item", action, item.ID, item))
}

// pantryError writes the response for a service failure.
func (h *PantryHandler) pantryError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, pantry.ErrUnknownUnit),
		errors.Is(err, pantry.ErrInvalidStatus),
		errors.Is(err, pantry.ErrNameRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(msg, "error", err)
		writeError(w, http.StatusInternalServerError, msg)
	}
}

// Inventory handles GET /pantry/inventory
func (h *PantryHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.pantryError(w, "failed to resolve user", err)
		return
	}
	inv, err := h.service.Inventory(userID)
	if err != nil {
		h.pantryError(w, "failed to load inventory", err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// AddItem handles POST /pantry/items
func (h *PantryHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req pantry.AddRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := h.userID(r)
	if err != nil {
		h.pantryError(w, "failed to resolve user", err)
		return
	}

	item, err := h.service.Add(userID, req)
	if err != nil {
		h.pantryError(w, "failed to add item", err)
		return
	}

	h.broadcast(userID, "created", item)
	writeJSON(w, http.StatusOK, item)
}

// UpdateItem handles PUT /pantry/items
func (h *PantryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req pantry.UpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := h.userID(r)
	if err != nil {
		h.pantryError(w, "failed to resolve user", err)
		return
	}

	item, err := h.service.Update(userID, req)
	if err != nil {
		h.pantryError(w, "failed to update item", err)
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "Item not found")
		return
	}

	h.broadcast(userID, "updated", item)
	writeJSON(w, http.StatusOK, item)
}

// RemoveItem handles DELETE /pantry/items/{id}
func (h *PantryHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	userID, err := h.userID(r)
	if err != nil {
		h.pantryError(w, "failed to resolve user", err)
		return
	}

	ok, err := h.service.Remove(userID, id)
	if err != nil {
		h.pantryError(w, "failed to remove item", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Item not found")
		return
	}

	h.hub.BroadcastToUser(userID, ws.NewMessage("pantry_item", "deleted", id, nil))
	writeJSON(w, http.StatusOK, true)
}

// Expired handles GET /pantry/expired
func (h *PantryHandler) Expired(w http.ResponseWriter, r *http.Request) {
	h.listFiltered(w, r, h.service.Expired)
}

// LowStock handles GET /pantry/low-stock
func (h *PantryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	h.listFiltered(w, r, h.service.LowStock)
}

func (h *PantryHandler) listFiltered(w http.ResponseWriter, r *http.Request, list func(string) ([]model.PantryItem, error)) {
	userID, err := h.userID(r)
	if err != nil {
		h.pantryError(w, "failed to resolve user", err)
		return
	}
	items, err := list(userID)
	if err != nil {
		h.pantryError(w, "failed to list items", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// NotImplemented answers the recipe-matching endpoints that have no backing
// implementation yet.
func (h *PantryHandler) NotImplemented(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotImplemented, "Not implemented yet")
}

// UpdateFromGrocery handles POST /pantry/update-from-grocery
func (h *PantryHandler) UpdateFromGrocery(w http.ResponseWriter, r *http.Request) {
	var purchases []pantry.Purchase
	if err := decodeList(r, &purchases); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := h.userID(r)
	if err != nil {
		h.pantryError(w, "failed to resolve user", err)
		return
	}

	changes, err := h.service.ApplyPurchases(userID, purchases)
	for _, c := range changes {
		action := "updated"
		if c.Created {
			action = "created"
		}
		h.broadcast(userID, action, &c.Item)
	}
	if err != nil {
		h.pantryError(w, "failed to update pantry", err)
		return
	}

	items := make([]model.PantryItem, 0, len(changes))
	for _, c := range changes {
		items = append(items, c.Item)
	}
	writeJSON(w, http.StatusOK, items)
}
