package adminapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shopadmin/pkg/problems"
	"shopadmin/pkg/shops"
)

type shopBody struct {
	ID      string   `json:"id"`
	Slug    string   `json:"slug"`
	Name    string   `json:"name"`
	Primary bool     `json:"primary"`
	Domains []string `json:"domains"`
}

func shopJSON(s shops.Shop) map[string]any {
	return map[string]any{
		"id":      s.ID,
		"slug":    s.Slug,
		"name":    s.Name,
		"primary": s.Primary,
		"domains": s.Domains,
	}
}

func (a *App) listShops(w http.ResponseWriter, r *http.Request) {
	list, err := a.shops.List(r.Context())
	if err != nil {
		problems.Write(w, "store-error", "shop listing failed", http.StatusInternalServerError, "")
		return
	}
	out := make([]map[string]any, 0, len(list))
	for _, s := range list {
		out = append(out, shopJSON(s))
	}
	writeJSON(w, map[string]any{"shops": out}, http.StatusOK)
}

func (a *App) createShop(w http.ResponseWriter, r *http.Request) {
	var b shopBody
	if !decodeJSON(w, r, &b) {
		return
	}
	if strings.TrimSpace(b.Slug) == "" {
		problems.Write(w, "invalid-shop", "missing slug", http.StatusBadRequest, "")
		return
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	s := shops.Shop{ID: b.ID, Slug: b.Slug, Name: b.Name, Primary: b.Primary, Domains: b.Domains}
	if err := a.shops.Upsert(r.Context(), s); err != nil {
		problems.Write(w, "store-error", "shop write failed", http.StatusInternalServerError, "")
		return
	}
	writeJSON(w, shopJSON(s), http.StatusCreated)
}

func (a *App) getShop(w http.ResponseWriter, r *http.Request) {
	s, err := a.shops.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		problems.Write(w, "shop-not-found", "shop not found", http.StatusNotFound, "")
		return
	}
	writeJSON(w, shopJSON(s), http.StatusOK)
}
