package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/fusionmeals/internal/cuisine"
)

type CuisineHandler struct {
	service *cuisine.Service
	catalog *cuisine.Catalog
	logger  *slog.Logger
}

func NewCuisineHandler(svc *cuisine.Service, catalog *cuisine.Catalog, logger *slog.Logger) *CuisineHandler {
	return &CuisineHandler{service: svc, catalog: catalog, logger: logger}
}

// Explore handles POST /global-cuisine/explore
func (h *CuisineHandler) Explore(w http.ResponseWriter, r *http.Request) {
	var req cuisine.ExploreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.Explore(r.Context(), req)
	if err != nil {
		writeLLMError(w, h.logger, "failed to explore cuisine", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *CuisineHandler) Regions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"regions": h.catalog.Regions})
}

func (h *CuisineHandler) Techniques(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"techniques": h.catalog.Techniques})
}

func (h *CuisineHandler) IngredientMap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ingredient_map": h.catalog.IngredientMap})
}
