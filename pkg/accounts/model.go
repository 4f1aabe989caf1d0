package accounts

// Account identifies a person on the platform. Accounts are never
// deleted, only marked disabled by surrounding identity code.
type Account struct {
	ID           string // uuid
	IdentityID   string // optional linked login-identity id (token subject)
	ActiveShopID string // stored per-account shop preference; may be empty
	GroupIDs     []string
	Disabled     bool
}

// InGroup reports whether the account belongs to the given group.
func (a Account) InGroup(groupID string) bool {
	for _, id := range a.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}
