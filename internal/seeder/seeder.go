package seeder

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hotelprocure/procure/internal/database"
	"github.com/hotelprocure/procure/internal/entity"
	"github.com/hotelprocure/procure/pkg/money"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "procure123"

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// Seed loads the demo organization and catalog. It does nothing when an
// organization already exists.
func (s *Seeder) Seed(ctx context.Context) error {
	exists, err := s.db.NewSelect().Model((*entity.Organization)(nil)).Exists(ctx)
	if err != nil {
		return fmt.Errorf("check seeded data: %w", err)
	}
	if exists {
		s.log("seed data already present, skipping")
		return nil
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.organization(ctx, tx); err != nil {
			return err
		}
		return s.catalog(ctx, tx)
	})
}

func (s *Seeder) organization(ctx context.Context, tx bun.Tx) error {
	org := &entity.Organization{
		Name:           "Hotely Praha",
		PrimaryColor:   "#2D4739",
		SecondaryColor: "#C9A227",
		Domain:         "hotely-praha.cz",
	}
	if _, err := tx.NewInsert().Model(org).Exec(ctx); err != nil {
		return fmt.Errorf("seed organization: %w", err)
	}

	branches := []*entity.Branch{
		{Name: "Hotel Vltava", Address: "Dvořákovo nábřeží 8, Praha 1", OrganizationID: org.ID},
		{Name: "Hotel Petřín", Address: "Újezd 24, Praha 5", OrganizationID: org.ID},
		{Name: "Hotel Vyšehrad", Address: "Na Pankráci 15, Praha 4", OrganizationID: org.ID},
	}
	if _, err := tx.NewInsert().Model(&branches).Exec(ctx); err != nil {
		return fmt.Errorf("seed branches: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}
	users := []*entity.User{
		{Name: "Jana Nováková", Email: "jana.novakova@hotely-praha.cz", PasswordHash: string(hash), Roles: []string{"ROLE_ADMIN"}},
		{Name: "Petr Svoboda", Email: "petr.svoboda@hotely-praha.cz", PasswordHash: string(hash), Roles: []string{"ROLE_USER"}},
		{Name: "Eva Dvořáková", Email: "eva.dvorakova@hotely-praha.cz", PasswordHash: string(hash), Roles: []string{"ROLE_USER"}},
	}
	if _, err := tx.NewInsert().Model(&users).Exec(ctx); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	memberships := []*entity.UserOrganization{
		{UserID: users[0].ID, OrganizationID: org.ID, Role: entity.RoleAdmin},
		{UserID: users[1].ID, OrganizationID: org.ID, Role: entity.RolePurchaseManager},
		{UserID: users[2].ID, OrganizationID: org.ID, BranchID: &branches[0].ID, Role: entity.RoleBranchManager},
	}
	if _, err := tx.NewInsert().Model(&memberships).Exec(ctx); err != nil {
		return fmt.Errorf("seed memberships: %w", err)
	}

	s.log("seeded organization",
		zap.Int64("organization_id", org.ID),
		zap.Int("branches", len(branches)),
		zap.Int("users", len(users)),
	)
	return nil
}

type seedOffer struct {
	supplier int
	price    string
	sku      string
}

type seedProduct struct {
	name        string
	description string
	unit        string
	category    string
	offers      []seedOffer
}

func (s *Seeder) catalog(ctx context.Context, tx bun.Tx) error {
	roots := []*entity.Category{
		{Name: "Maso", Icon: "beef"},
		{Name: "Zelenina", Icon: "carrot"},
		{Name: "Mléčné výrobky", Icon: "milk"},
		{Name: "Nápoje", Icon: "wine"},
		{Name: "Úklid", Icon: "spray"},
	}
	if _, err := tx.NewInsert().Model(&roots).Exec(ctx); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	children := []*entity.Category{
		{Name: "Hovězí", ParentID: &roots[0].ID},
		{Name: "Drůbež", ParentID: &roots[0].ID},
	}
	if _, err := tx.NewInsert().Model(&children).Exec(ctx); err != nil {
		return fmt.Errorf("seed subcategories: %w", err)
	}
	categories := map[string]int64{}
	for _, c := range append(roots, children...) {
		categories[c.Name] = c.ID
	}

	suppliers := []*entity.Supplier{
		{Name: "Makro Cash & Carry", Category: "Velkoobchod", Status: entity.SupplierActive, APIEndpoint: "https://api.makro.cz"},
		{Name: "Bidfood", Category: "Gastro", Status: entity.SupplierActive},
		{Name: "Zelenina Novák", Category: "Zelenina", Status: entity.SupplierActive},
		{Name: "Hygiena Plus", Category: "Úklid", Status: entity.SupplierError},
	}
	if _, err := tx.NewInsert().Model(&suppliers).Exec(ctx); err != nil {
		return fmt.Errorf("seed suppliers: %w", err)
	}

	products := []seedProduct{
		{name: "Hovězí svíčková", description: "Chlazená, vakuově balená", unit: "kg", category: "Hovězí",
			offers: []seedOffer{{0, "489.00", "MK-HS-01"}, {1, "512.50", "BF-1044"}}},
		{name: "Kuřecí prsa", unit: "kg", category: "Drůbež",
			offers: []seedOffer{{0, "159.90", "MK-KP-02"}, {1, "149.00", "BF-2210"}}},
		{name: "Rajčata cherry", unit: "kg", category: "Zelenina",
			offers: []seedOffer{{2, "89.00", "ZN-RC"}, {0, "94.90", "MK-RC-11"}}},
		{name: "Brambory", description: "Varný typ B", unit: "kg", category: "Zelenina",
			offers: []seedOffer{{2, "18.50", "ZN-BR"}}},
		{name: "Mléko 3,5 %", unit: "l", category: "Mléčné výrobky",
			offers: []seedOffer{{0, "24.90", "MK-ML-35"}, {1, "23.50", "BF-0301"}}},
		{name: "Máslo 82 %", unit: "kg", category: "Mléčné výrobky",
			offers: []seedOffer{{1, "219.00", "BF-0410"}}},
		{name: "Minerální voda 0,5 l", unit: "ks", category: "Nápoje",
			offers: []seedOffer{{0, "9.90", "MK-MV-05"}}},
		{name: "Dezinfekce povrchů 5 l", unit: "ks", category: "Úklid",
			offers: []seedOffer{{3, "329.00", "HP-DZ5"}}},
	}

	offerCount := 0
	for _, sp := range products {
		p := &entity.Product{
			Name:        sp.name,
			Description: sp.description,
			Unit:        sp.unit,
			CategoryID:  categories[sp.category],
		}
		if _, err := tx.NewInsert().Model(p).Exec(ctx); err != nil {
			return fmt.Errorf("seed product %q: %w", sp.name, err)
		}
		for _, so := range sp.offers {
			offer := &entity.ProductOffer{
				ProductID:  p.ID,
				SupplierID: suppliers[so.supplier].ID,
				Price:      money.MustParse(so.price),
				Currency:   "CZK",
				SKU:        so.sku,
				IsActive:   true,
			}
			if _, err := tx.NewInsert().Model(offer).Exec(ctx); err != nil {
				return fmt.Errorf("seed offer %q: %w", so.sku, err)
			}
			offerCount++
		}
	}

	for _, sup := range suppliers {
		n := 0
		for _, sp := range products {
			for _, so := range sp.offers {
				if suppliers[so.supplier] == sup {
					n++
				}
			}
		}
		if _, err := tx.NewUpdate().Model(sup).Set("product_count = ?", n).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("seed supplier counters: %w", err)
		}
	}

	s.log("seeded catalog",
		zap.Int("categories", len(categories)),
		zap.Int("suppliers", len(suppliers)),
		zap.Int("products", len(products)),
		zap.Int("offers", offerCount),
	)
	return nil
}

func (s *Seeder) log(msg string, fields ...zap.Field) {
	if s.logger != nil {
		s.logger.Info(msg, fields...)
	}
}
