// pkg/seed/seed.go
package seed

import (
	"context"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"shopadmin/pkg/accounts"
	"shopadmin/pkg/groups"
	"shopadmin/pkg/shops"
)

// Fixture is the YAML bootstrap format for dev environments and tests.
//
//	shops:
//	  - id: 11111111-1111-1111-1111-111111111111
//	    slug: acme
//	    primary: true
//	    domains: [acme.example.com]
//	groups:
//	  - id: ...
//	    shop_id: ...
//	    slug: owners
//	    permissions: [owner]
//	accounts:
//	  - id: ...
//	    identity_id: auth0|abc
//	    groups: [<group id>]
type Fixture struct {
	Shops []struct {
		ID      string   `yaml:"id"`
		Slug    string   `yaml:"slug"`
		Name    string   `yaml:"name"`
		Primary bool     `yaml:"primary"`
		Domains []string `yaml:"domains"`
	} `yaml:"shops"`
	Groups []struct {
		ID          string   `yaml:"id"`
		ShopID      string   `yaml:"shop_id"`
		Slug        string   `yaml:"slug"`
		Name        string   `yaml:"name"`
		Permissions []string `yaml:"permissions"`
	} `yaml:"groups"`
	Accounts []struct {
		ID           string   `yaml:"id"`
		IdentityID   string   `yaml:"identity_id"`
		ActiveShopID string   `yaml:"active_shop_id"`
		Groups       []string `yaml:"groups"`
	} `yaml:"accounts"`
}

func Parse(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, err
	}
	return f, nil
}

func LoadFile(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, err
	}
	return Parse(data)
}

// Apply upserts the fixture into the given stores.
func Apply(ctx context.Context, f Fixture, shopStore shops.Store, groupStore groups.Store, accountStore accounts.Store, log *zap.SugaredLogger) error {
	for _, s := range f.Shops {
		if err := shopStore.Upsert(ctx, shops.Shop{ID: s.ID, Slug: s.Slug, Name: s.Name, Primary: s.Primary, Domains: s.Domains}); err != nil {
			return err
		}
	}
	for _, g := range f.Groups {
		shopID := g.ShopID
		if shopID == "" || shopID == "global" {
			shopID = groups.GlobalShopID
		}
		if err := groupStore.Upsert(ctx, groups.Group{ID: g.ID, ShopID: shopID, Slug: g.Slug, Name: g.Name, Permissions: g.Permissions}); err != nil {
			return err
		}
	}
	for _, a := range f.Accounts {
		if err := accountStore.Upsert(ctx, accounts.Account{ID: a.ID, IdentityID: a.IdentityID, ActiveShopID: a.ActiveShopID, GroupIDs: a.Groups}); err != nil {
			return err
		}
	}
	log.Infow("seed applied", "shops", len(f.Shops), "groups", len(f.Groups), "accounts", len(f.Accounts))
	return nil
}

// ApplyFile is LoadFile + Apply; a missing path is a no-op.
func ApplyFile(ctx context.Context, path string, shopStore shops.Store, groupStore groups.Store, accountStore accounts.Store, log *zap.SugaredLogger) error {
	if path == "" {
		return nil
	}
	f, err := LoadFile(path)
	if err != nil {
		return err
	}
	return Apply(ctx, f, shopStore, groupStore, accountStore, log)
}
