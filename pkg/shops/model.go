package shops

// Shop represents a single store/marketplace unit — the unit of
// scoping for capability checks.
type Shop struct {
	ID      string // uuid
	Slug    string // short name (acme)
	Name    string
	Primary bool     // at most one shop in the system is primary
	Domains []string // network hosts that resolve to this shop
}

// HasDomain reports whether host appears in the shop's domain list.
func (s Shop) HasDomain(host string) bool {
	for _, d := range s.Domains {
		if d == host {
			return true
		}
	}
	return false
}
