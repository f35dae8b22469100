package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/fusionmeals/internal/amazon"
	"github.com/dukerupert/fusionmeals/internal/email"
	"github.com/dukerupert/fusionmeals/internal/grocery"
	"github.com/dukerupert/fusionmeals/internal/model"
)

type GroceryHandler struct {
	categorizer *grocery.Categorizer
	amazon      *amazon.Client
	email       *email.Client
	logger      *slog.Logger
}

func NewGroceryHandler(c *grocery.Categorizer, ac *amazon.Client, ec *email.Client, logger *slog.Logger) *GroceryHandler {
	return &GroceryHandler{categorizer: c, amazon: ac, email: ec, logger: logger}
}

type parseRecipeRequest struct {
	RecipeIngredients string `json:"recipe_ingredients"`
}

// ParseRecipe handles POST /grocery/parse-recipe
func (h *GroceryHandler) ParseRecipe(w http.ResponseWriter, r *http.Request) {
	var req parseRecipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.categorizer.Categorize(r.Context(), req.RecipeIngredients)
	if err != nil {
		if errors.Is(err, grocery.ErrEmptyInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("categorize ingredients", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// AddToCart handles POST /grocery/add-to-cart
func (h *GroceryHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var items []model.GroceryItem
	if err := decodeList(r, &items); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, grocery.PriceCart(items))
}

type amazonCheckoutRequest struct {
	Items     []model.GroceryItem `json:"items" validate:"required"`
	UserToken string              `json:"user_token"`
}

// AmazonCheckout handles POST /grocery/amazon-checkout
func (h *GroceryHandler) AmazonCheckout(w http.ResponseWriter, r *http.Request) {
	var req amazonCheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cart, err := h.amazon.Checkout(req.Items, req.UserToken)
	if err != nil {
		if errors.Is(err, amazon.ErrNoMatches) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("amazon checkout", "error", err)
		writeError(w, http.StatusInternalServerError, "Error processing Amazon checkout")
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

type emailListRequest struct {
	To    string              `json:"to" validate:"required,email"`
	Items []model.GroceryItem `json:"items" validate:"required,min=1"`
}

// EmailList handles POST /grocery/shopping-list/email
func (h *GroceryHandler) EmailList(w http.ResponseWriter, r *http.Request) {
	if !h.email.Configured() {
		writeError(w, http.StatusServiceUnavailable, "email is not configured")
		return
	}

	var req emailListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.email.SendShoppingList(r.Context(), req.To, req.Items); err != nil {
		h.logger.Error("send shopping list", "error", err)
		writeError(w, http.StatusBadGateway, "failed to send email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Shopping list sent"})
}
