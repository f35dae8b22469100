package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/fusionmeals/internal/model"
	"github.com/dukerupert/fusionmeals/internal/pantry"
	"github.com/dukerupert/fusionmeals/internal/store"
	ws "github.com/dukerupert/fusionmeals/internal/websocket"
)

func newTestPantryHandler(db *sql.DB) *PantryHandler {
	return NewPantryHandler(
		pantry.NewService(store.NewPantryStore(db)),
		store.NewUserStore(db),
		ws.NewHub(testLogger),
		testLogger,
	)
}

func addPantryItem(t *testing.T, h *PantryHandler, r *http.Request) model.PantryItem {
	t.Helper()
	rec := httptest.NewRecorder()
	h.AddItem(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("AddItem status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var item model.PantryItem
	decodeBody(t, rec, &item)
	return item
}

func TestPantryAddAndInventory(t *testing.T) {
	db := setupHandlerDB(t)
	h := newTestPantryHandler(db)
	guest := newGuest(t, db)

	item := addPantryItem(t, h, withAuth(jsonRequest(http.MethodPost, "/pantry/items",
		`{"name": "Rice", "quantity": 2, "unit": "KG"}`), guest))
	if item.ID == "" {
		t.Fatal("expected item id")
	}
	if item.Unit != "kg" {
		t.Errorf("unit = %q, want kg", item.Unit)
	}
	if item.Category != pantry.DefaultCategory {
		t.Errorf("category = %q, want %q", item.Category, pantry.DefaultCategory)
	}
	if item.UserID != guest.UserID {
		t.Errorf("user_id = %q, want %q", item.UserID, guest.UserID)
	}

	rec := httptest.NewRecorder()
	h.Inventory(rec, withAuth(httptest.NewRequest(http.MethodGet, "/pantry/inventory", nil), guest))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var inv model.PantryInventory
	decodeBody(t, rec, &inv)
	if len(inv.Items) != 1 || inv.Items[0].ID != item.ID {
		t.Errorf("inventory = %+v, want the added item", inv.Items)
	}
}

func TestPantryDemoUser(t *testing.T) {
	db := setupHandlerDB(t)
	h := newTestPantryHandler(db)

	item := addPantryItem(t, h, jsonRequest(http.MethodPost, "/pantry/items", `{"name": "Beans", "quantity": 1}`))
	if item.UserID != DemoUserID {
		t.Errorf("user_id = %q, want %q", item.UserID, DemoUserID)
	}

	rec := httptest.NewRecorder()
	h.Inventory(rec, httptest.NewRequest(http.MethodGet, "/pantry/inventory", nil))
	var inv model.PantryInventory
	decodeBody(t, rec, &inv)
	if inv.UserID != DemoUserID || len(inv.Items) != 1 {
		t.Errorf("inventory = %+v, want one demo item", inv)
	}
}

func TestPantryAddValidation(t *testing.T) {
	db := setupHandlerDB(t)
	h := newTestPantryHandler(db)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"quantity": 1}`},
		{"blank name", `{"name": "   ", "quantity": 1}`},
		{"unknown unit", `{"name": "Rice", "quantity": 1, "unit": "parsecs"}`},
		{"invalid status", `{"name": "Rice", "quantity": 1, "status": "rotten"}`},
		{"negative quantity", `{"name": "Rice", "quantity": -1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.AddItem(rec, jsonRequest(http.MethodPost, "/pantry/items", tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("AddItem(%s) status = %d, want %d", tt.body, rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestPantryUpdateItem(t *testing.T) {
	db := setupHandlerDB(t)
	h := newTestPantryHandler(db)
	guest := newGuest(t, db)

	item := addPantryItem(t, h, withAuth(jsonRequest(http.MethodPost, "/pantry/items",
		`{"name": "Flour", "quantity": 1, "unit": "kg"}`), guest))

	rec := httptest.NewRecorder()
	h.UpdateItem(rec, withAuth(jsonRequest(http.MethodPut, "/pantry/items",
		`{"id": "`+item.ID+`", "quantity": 3}`), guest))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var updated model.PantryItem
	decodeBody(t, rec, &updated)
	if updated.Quantity != 3 {
		t.Errorf("quantity = %v, want 3", updated.Quantity)
	}
	if updated.Unit != "kg" {
		t.Errorf("unit = %q, want kg (unchanged)", updated.Unit)
	}

	rec = httptest.NewRecorder()
	h.UpdateItem(rec, withAuth(jsonRequest(http.MethodPut, "/pantry/items",
		`{"id": "`+item.ID+`", "unit": "parsecs"}`), guest))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown unit status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPantryUpdateMissing(t *testing.T) {
	db := setupHandlerDB(t)
	h := newTestPantryHandler(db)

	rec := httptest.NewRecorder()
	h.UpdateItem(rec, jsonRequest(http.MethodPut, "/pantry/items", `{"id": "no-such-item", "quantity": 1}`))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if got := errorMessage(t, rec); got != "Item not found" {
		t.Errorf("error = %q, want %q", got, "Item not found")
	}
}

func TestPantryRemoveItem(t *testing.T) {
	db := setupHandlerDB(t)
	h := newTestPantryHandler(db)
	guest := newGuest(t, db)

	item := addPantryItem(t, h, withAuth(jsonRequest(http.MethodPost, "/pantry/items",
		`{"name": "Salt", "quantity": 1}`), guest))

	remove := func(id string) *httptest.ResponseRecorder {
		req := withAuth(httptest.NewRequest(http.MethodDelete, "/pantry/items/"+id, nil), guest)
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()
		h.RemoveItem(rec, req)
		return rec
	}

	rec := remove(item.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var ok bool
	decodeBody(t, rec, &ok)
	if !ok {
		t.Error("expected true")
	}

	if rec := remove(item.ID); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestPantryRemoveOtherUsersItem(t *testing.T) {
	db := setupHandlerDB(t)
	h := newTestPantryHandler(db)
	owner := newGuest(t, db)
	other := newGuest(t, db)

	item := addPantryItem(t, h, withAuth(jsonRequest(http.MethodPost, "/pantry/items",
		`{"name": "Sugar", "quantity": 1}`), owner))

	req := withAuth(httptest.NewRequest(http.MethodDelete, "/pantry/items/"+item.ID, nil), other)
	req.SetPathValue("id", item.ID)
	rec := httptest.NewRecorder()
	h.RemoveItem(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestPantryFilteredLists(t *testing.T) {
	db := setupHandlerDB(t)
	h := newTestPantryHandler(db)
	guest := newGuest(t, db)

	addPantryItem(t, h, withAuth(jsonRequest(http.MethodPost, "/pantry/items",
		`{"name": "Old Yogurt", "quantity": 1, "expiry_date": "2000-01-01"}`), guest))
	addPantryItem(t, h, withAuth(jsonRequest(http.MethodPost, "/pantry/items",
		`{"name": "Eggs", "quantity": 1, "threshold_quantity": 6}`), guest))

	tests := []struct {
		name   string
		handle http.HandlerFunc
		want   string
	}{
		{"expired", h.Expired, "Old Yogurt"},
		{"low stock", h.LowStock, "Eggs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handle(rec, withAuth(httptest.NewRequest(http.MethodGet, "/", nil), guest))
			var items []model.PantryItem
			decodeBody(t, rec, &items)
			if len(items) != 1 || items[0].Name != tt.want {
				t.Errorf("items = %+v, want only %s", items, tt.want)
			}
		})
	}
}

func TestPantryNotImplemented(t *testing.T) {
	db := setupHandlerDB(t)
	h := newTestPantryHandler(db)

	rec := httptest.NewRecorder()
	h.NotImplemented(rec, httptest.NewRequest(http.MethodGet, "/pantry/recipe-suggestions", nil))
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotImplemented)
	}
}

func TestPantryUpdateFromGrocery(t *testing.T) {
	db := setupHandlerDB(t)
	h := newTestPantryHandler(db)
	guest := newGuest(t, db)

	addPantryItem(t, h, withAuth(jsonRequest(http.MethodPost, "/pantry/items",
		`{"name": "Milk", "quantity": 1, "unit": "l"}`), guest))

	rec := httptest.NewRecorder()
	h.UpdateFromGrocery(rec, withAuth(jsonRequest(http.MethodPost, "/pantry/update-from-grocery", `[
		{"name": "milk", "quantity": 2},
		{"name": "Basil", "unit": "sprigs"}
	]`), guest))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var items []model.PantryItem
	decodeBody(t, rec, &items)
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Name != "Milk" || items[0].Quantity != 3 {
		t.Errorf("merged item = %+v, want Milk with quantity 3", items[0])
	}
	if items[1].Name != "Basil" || items[1].Unit != pantry.DefaultUnit || items[1].Quantity != 1 {
		t.Errorf("created item = %+v, want Basil 1 %s", items[1], pantry.DefaultUnit)
	}
}

func TestPantryUpdateFromGroceryValidation(t *testing.T) {
	db := setupHandlerDB(t)
	h := newTestPantryHandler(db)

	rec := httptest.NewRecorder()
	h.UpdateFromGrocery(rec, jsonRequest(http.MethodPost, "/pantry/update-from-grocery", `[{"quantity": 1}]`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := errorMessage(t, rec); got != "item 0: name is required" {
		t.Errorf("error = %q, want %q", got, "item 0: name is required")
	}
}
