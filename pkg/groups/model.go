package groups

// GlobalShopID is the reserved scope key for platform-wide roles that
// are not tied to any single shop.
const GlobalShopID = "__global__"

// Group is a named bundle of capability strings scoped to exactly one
// shop (or to GlobalShopID for platform-wide roles).
type Group struct {
	ID          string // uuid
	ShopID      string // owning shop, or GlobalShopID
	Slug        string
	Name        string
	Permissions []string // capability strings, e.g. "owner", "admin", "order/view"
}
