package adminapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopadmin/pkg/authz"
	mw "shopadmin/pkg/middleware"
	"shopadmin/pkg/problems"
)

func (a *App) getSessionShop(w http.ResponseWriter, r *http.Request) {
	sess := mw.SessionFrom(r.Context())
	if sess == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}
	shopID := a.resolver.ResolveShopID(r.Context(), sess)
	resp := map[string]any{"shop_id": shopID}
	if shopID != "" {
		if s, err := a.shops.FindByID(r.Context(), shopID); err == nil {
			resp["shop"] = shopJSON(s)
		}
	}
	writeJSON(w, resp, http.StatusOK)
}

func (a *App) switchShop(w http.ResponseWriter, r *http.Request) {
	sess := mw.SessionFrom(r.Context())
	if sess == nil || sess.AccountID == "" {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	var b struct {
		ShopID string `json:"shop_id"`
	}
	if !decodeJSON(w, r, &b) {
		return
	}
	if b.ShopID != "" {
		if _, err := a.shops.FindByID(r.Context(), b.ShopID); err != nil {
			problems.Write(w, "shop-not-found", "shop not found", http.StatusNotFound, "")
			return
		}
	}
	if err := a.accounts.SetActiveShop(r.Context(), sess.AccountID, b.ShopID); err != nil {
		problems.Write(w, "account-not-found", "account not found", http.StatusNotFound, "")
		return
	}
	a.resolver.ResetShopID(r.Context(), sess)
	writeJSON(w, map[string]any{"shop_id": a.resolver.ResolveShopID(r.Context(), sess)}, http.StatusOK)
}

// checkPermission evaluates a capability request for the calling
// session. The capabilities field accepts a single string or a list,
// mirroring the library's one-or-many parameter; any other shape is
// rejected outright.
func (a *App) checkPermission(w http.ResponseWriter, r *http.Request) {
	sess := mw.SessionFrom(r.Context())
	if sess == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}
	var b struct {
		Capabilities any    `json:"capabilities"`
		ShopID       string `json:"shop_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	caps, err := authz.ParseCapabilities(b.Capabilities)
	if err != nil {
		problems.Write(w, "invalid-capabilities", "invalid capabilities", http.StatusBadRequest, err.Error())
		return
	}
	allowed, err := a.checker.HasPermission(r.Context(), sess, caps, b.ShopID)
	if err != nil {
		if errors.Is(err, authz.ErrInvalidCapabilities) {
			problems.Write(w, "invalid-capabilities", "invalid capabilities", http.StatusBadRequest, err.Error())
			return
		}
		problems.Write(w, "check-failed", "permission check failed", http.StatusInternalServerError, "")
		return
	}
	writeJSON(w, map[string]any{"allowed": allowed}, http.StatusOK)
}
