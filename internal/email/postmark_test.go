package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/fusionmeals/internal/model"
)

func newTestServer(t *testing.T, status int, received *postmarkEmail, gotToken *string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotToken != nil {
			*gotToken = r.Header.Get("X-Postmark-Server-Token")
		}
		if received != nil {
			if err := json.NewDecoder(r.Body).Decode(received); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.WriteHeader(status)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSendRecipe(t *testing.T) {
	var received postmarkEmail
	var gotToken string
	server := newTestServer(t, http.StatusOK, &received, &gotToken)

	client := NewClient("test-token", "noreply@example.com", WithAPIURL(server.URL), WithHTTPClient(server.Client()))
	err := client.SendRecipe(context.Background(), "alice@example.com", "", "**Recipe Name**: Miso <Tacos>")
	if err != nil {
		t.Fatalf("send recipe: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("server token = %q, want %q", gotToken, "test-token")
	}
	if received.To != "alice@example.com" {
		t.Errorf("To = %q, want %q", received.To, "alice@example.com")
	}
	if received.From != "noreply@example.com" {
		t.Errorf("From = %q, want %q", received.From, "noreply@example.com")
	}
	if received.Subject != "A recipe from FusionMeals" {
		t.Errorf("Subject = %q", received.Subject)
	}
	if received.TextBody != "**Recipe Name**: Miso <Tacos>" {
		t.Errorf("TextBody = %q", received.TextBody)
	}
	if !strings.Contains(received.HtmlBody, "Miso &lt;Tacos&gt;") {
		t.Errorf("HtmlBody not escaped: %q", received.HtmlBody)
	}
}

func TestSendShoppingListSkipsPlaceholders(t *testing.T) {
	var received postmarkEmail
	server := newTestServer(t, http.StatusOK, &received, nil)

	client := NewClient("test-token", "noreply@example.com", WithAPIURL(server.URL))
	items := []model.GroceryItem{
		{Name: "Milk", Quantity: "1 gallon", Category: "Dairy & Eggs"},
		{Name: "Tomatoes", Quantity: "3", Category: "Produce"},
		{Name: "Eggs", Quantity: "", Category: "Dairy & Eggs"},
		{Name: "No beverages items needed", Quantity: "", Category: "Beverages"},
	}
	if err := client.SendShoppingList(context.Background(), "bob@example.com", items); err != nil {
		t.Fatalf("send shopping list: %v", err)
	}

	want := "Dairy & Eggs\n  - Milk - 1 gallon\n  - Eggs\n\nProduce\n  - Tomatoes - 3"
	if received.TextBody != want {
		t.Errorf("TextBody = %q, want %q", received.TextBody, want)
	}
	if strings.Contains(received.HtmlBody, "Beverages") {
		t.Error("placeholder category should be omitted")
	}
	if !strings.Contains(received.HtmlBody, "<h3>Dairy &amp; Eggs</h3>") {
		t.Errorf("HtmlBody = %q", received.HtmlBody)
	}
}

func TestSendNotConfigured(t *testing.T) {
	client := NewClient("", "noreply@example.com")
	if client.Configured() {
		t.Error("expected Configured() = false")
	}
	err := client.SendRecipe(context.Background(), "a@example.com", "s", "r")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestSendAPIError(t *testing.T) {
	server := newTestServer(t, http.StatusUnprocessableEntity, nil, nil)
	client := NewClient("test-token", "noreply@example.com", WithAPIURL(server.URL))
	err := client.SendRecipe(context.Background(), "a@example.com", "s", "r")
	if err == nil || !strings.Contains(err.Error(), "422") {
		t.Errorf("err = %v, want status 422", err)
	}
}
