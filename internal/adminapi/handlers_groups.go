package adminapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shopadmin/pkg/groups"
	mw "shopadmin/pkg/middleware"
	"shopadmin/pkg/problems"
)

type groupBody struct {
	ID          string   `json:"id"`
	ShopID      string   `json:"shop_id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

func groupJSON(g groups.Group) map[string]any {
	return map[string]any{
		"id":          g.ID,
		"shop_id":     g.ShopID,
		"slug":        g.Slug,
		"name":        g.Name,
		"permissions": g.Permissions,
	}
}

// requestShopID picks the shop scope for a group operation: explicit
// value first, else the session's resolved shop.
func (a *App) requestShopID(r *http.Request, explicit string) string {
	if explicit != "" {
		if explicit == "global" {
			return groups.GlobalShopID
		}
		return explicit
	}
	if sess := mw.SessionFrom(r.Context()); sess != nil {
		return a.resolver.ResolveShopID(r.Context(), sess)
	}
	return ""
}

func (a *App) listGroups(w http.ResponseWriter, r *http.Request) {
	shopID := a.requestShopID(r, r.URL.Query().Get("shop_id"))
	if shopID == "" {
		problems.Write(w, "no-shop", "no shop scope", http.StatusBadRequest, "pass shop_id or establish a shop context")
		return
	}
	list, err := a.groups.ListByShop(r.Context(), shopID)
	if err != nil {
		problems.Write(w, "store-error", "group listing failed", http.StatusInternalServerError, "")
		return
	}
	out := make([]map[string]any, 0, len(list))
	for _, g := range list {
		out = append(out, groupJSON(g))
	}
	writeJSON(w, map[string]any{"groups": out}, http.StatusOK)
}

func (a *App) createGroup(w http.ResponseWriter, r *http.Request) {
	var b groupBody
	if !decodeJSON(w, r, &b) {
		return
	}
	if strings.TrimSpace(b.Slug) == "" {
		problems.Write(w, "invalid-group", "missing slug", http.StatusBadRequest, "")
		return
	}
	shopID := a.requestShopID(r, b.ShopID)
	if shopID == "" {
		problems.Write(w, "no-shop", "no shop scope", http.StatusBadRequest, "pass shop_id or establish a shop context")
		return
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	g := groups.Group{ID: b.ID, ShopID: shopID, Slug: b.Slug, Name: b.Name, Permissions: b.Permissions}
	if err := a.groups.Upsert(r.Context(), g); err != nil {
		problems.Write(w, "store-error", "group write failed", http.StatusInternalServerError, "")
		return
	}
	writeJSON(w, groupJSON(g), http.StatusCreated)
}

func (a *App) updateGroup(w http.ResponseWriter, r *http.Request) {
	var b groupBody
	if !decodeJSON(w, r, &b) {
		return
	}
	b.ID = chi.URLParam(r, "id")
	shopID := a.requestShopID(r, b.ShopID)
	if strings.TrimSpace(b.Slug) == "" || shopID == "" {
		problems.Write(w, "invalid-group", "missing slug or shop scope", http.StatusBadRequest, "")
		return
	}
	g := groups.Group{ID: b.ID, ShopID: shopID, Slug: b.Slug, Name: b.Name, Permissions: b.Permissions}
	if err := a.groups.Upsert(r.Context(), g); err != nil {
		problems.Write(w, "store-error", "group write failed", http.StatusInternalServerError, "")
		return
	}
	writeJSON(w, groupJSON(g), http.StatusOK)
}

func (a *App) addMember(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	accountID := chi.URLParam(r, "accountID")
	if gs, err := a.groups.FindByIDs(r.Context(), []string{groupID}); err != nil || len(gs) == 0 {
		problems.Write(w, "group-not-found", "group not found", http.StatusNotFound, "")
		return
	}
	if err := a.accounts.AddToGroup(r.Context(), accountID, groupID); err != nil {
		problems.Write(w, "account-not-found", "account not found", http.StatusNotFound, "")
		return
	}
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}

func (a *App) removeMember(w http.ResponseWriter, r *http.Request) {
	if err := a.accounts.RemoveFromGroup(r.Context(), chi.URLParam(r, "accountID"), chi.URLParam(r, "id")); err != nil {
		problems.Write(w, "account-not-found", "account not found", http.StatusNotFound, "")
		return
	}
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}
