package adminapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopadmin/pkg/accounts"
	"shopadmin/pkg/authz"
	mw "shopadmin/pkg/middleware"
	"shopadmin/pkg/problems"
)

func accountJSON(a accounts.Account) map[string]any {
	return map[string]any{
		"id":             a.ID,
		"identity_id":    a.IdentityID,
		"active_shop_id": a.ActiveShopID,
		"groups":         a.GroupIDs,
		"disabled":       a.Disabled,
	}
}

// requireSelfOr allows an account to operate on itself; anyone else
// needs the given capability in the session's shop scope.
func (a *App) requireSelfOr(w http.ResponseWriter, r *http.Request, accountID, capability string) bool {
	sess := mw.SessionFrom(r.Context())
	if sess == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return false
	}
	if sess.AccountID == accountID && accountID != "" {
		return true
	}
	allowed, err := a.checker.HasPermission(r.Context(), sess, authz.Cap(capability), "")
	if err != nil || !allowed {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func (a *App) getAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !a.requireSelfOr(w, r, id, "account/view") {
		return
	}
	acct, err := a.accounts.FindByID(r.Context(), id)
	if err != nil {
		problems.Write(w, "account-not-found", "account not found", http.StatusNotFound, "")
		return
	}
	writeJSON(w, accountJSON(acct), http.StatusOK)
}

func (a *App) setActiveShop(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !a.requireSelfOr(w, r, id, "account/manage") {
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
	if err := a.accounts.SetActiveShop(r.Context(), id, b.ShopID); err != nil {
		problems.Write(w, "account-not-found", "account not found", http.StatusNotFound, "")
		return
	}
	// The preference feeds shop resolution; drop the caller's cached
	// value so their next resolution sees the change.
	if sess := mw.SessionFrom(r.Context()); sess != nil && sess.AccountID == id {
		a.resolver.ResetShopID(r.Context(), sess)
	}
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}
