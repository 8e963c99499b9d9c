package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Membership roles a user can hold inside an organization.
const (
	RoleAdmin           = "admin"
	RolePurchaseManager = "purchase_manager"
	RoleBranchManager   = "branch_manager"
)

// Organization is a tenant owning branches (hotels) and user memberships.
type Organization struct {
	bun.BaseModel `bun:"table:organizations,alias:org"`

	ID             int64     `bun:",pk,autoincrement"`
	Name           string    `bun:"name,notnull"`
	Logo           string    `bun:"logo,nullzero"`
	PrimaryColor   string    `bun:"primary_color,nullzero"`
	SecondaryColor string    `bun:"secondary_color,nullzero"`
	Domain         string    `bun:"domain,nullzero"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}

// Branch is a physical location (usually a hotel) that orders are delivered to.
type Branch struct {
	bun.BaseModel `bun:"table:branches,alias:b"`

	ID             int64         `bun:",pk,autoincrement"`
	Name           string        `bun:"name,notnull"`
	Address        string        `bun:"address,nullzero"`
	OrganizationID int64         `bun:"organization_id,notnull"`
	Organization   *Organization `bun:"rel:belongs-to,join:organization_id=id"`
	CreatedAt      time.Time     `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}

// User is a person acting on orders. Roles holds application roles such as ROLE_ADMIN.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64               `bun:",pk,autoincrement"`
	Name         string              `bun:"name,notnull"`
	Email        string              `bun:"email,notnull,unique"`
	PasswordHash string              `bun:"password_hash,notnull"`
	Avatar       string              `bun:"avatar,nullzero"`
	Roles        []string            `bun:"roles"`
	Memberships  []*UserOrganization `bun:"rel:has-many,join:id=user_id"`
	CreatedAt    time.Time           `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}

// UserOrganization links a user to an organization, optionally scoped to one branch.
type UserOrganization struct {
	bun.BaseModel `bun:"table:user_organizations,alias:uo"`

	ID             int64         `bun:",pk,autoincrement"`
	UserID         int64         `bun:"user_id,notnull"`
	OrganizationID int64         `bun:"organization_id,notnull"`
	Organization   *Organization `bun:"rel:belongs-to,join:organization_id=id"`
	BranchID       *int64        `bun:"branch_id"`
	Role           string        `bun:"role,notnull"`
	CreatedAt      time.Time     `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}

// ValidMembershipRole reports whether role is one of the membership roles.
func ValidMembershipRole(role string) bool {
	switch role {
	case RoleAdmin, RolePurchaseManager, RoleBranchManager:
		return true
	default:
		return false
	}
}
