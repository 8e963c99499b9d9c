package organization

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hotelprocure/procure/internal/database"
	"github.com/hotelprocure/procure/internal/entity"
)

var repoTracer = otel.Tracer("github.com/hotelprocure/procure/repository/organization")

var (
	// ErrUserNotFound is returned when a user is missing.
	ErrUserNotFound = errors.New("user not found")
	// ErrBranchNotFound is returned when a branch is missing.
	ErrBranchNotFound = errors.New("branch not found")
	// ErrOrganizationNotFound is returned when an organization is missing.
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrNoMembership is returned when a user belongs to no organization.
	ErrNoMembership = errors.New("user has no organization membership")
)

// Repository covers organizations, branches, users and memberships.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires the repository on the configured connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

func notFound(span trace.Span, err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return sentinel
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "query failed")
	return err
}

// GetUser loads a user by id.
func (r *Repository) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "OrganizationRepository.GetUser", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	user := new(entity.User)
	if err := r.reader.NewSelect().Model(user).Where("u.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(span, err, ErrUserNotFound)
	}
	return user, nil
}

// PrimaryMembership returns the user's earliest membership with its organization.
func (r *Repository) PrimaryMembership(ctx context.Context, userID int64) (*entity.UserOrganization, error) {
	ctx, span := repoTracer.Start(ctx, "OrganizationRepository.PrimaryMembership", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	m := new(entity.UserOrganization)
	err := r.reader.NewSelect().
		Model(m).
		Relation("Organization").
		Where("uo.user_id = ?", userID).
		OrderExpr("uo.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(span, err, ErrNoMembership)
	}
	return m, nil
}

// ListBranches returns the organization's branches by name.
func (r *Repository) ListBranches(ctx context.Context, organizationID int64) ([]*entity.Branch, error) {
	ctx, span := repoTracer.Start(ctx, "OrganizationRepository.ListBranches", trace.WithAttributes(attribute.Int64("organization.id", organizationID)))
	defer span.End()

	branches := make([]*entity.Branch, 0)
	err := r.reader.NewSelect().
		Model(&branches).
		Where("b.organization_id = ?", organizationID).
		OrderExpr("b.name ASC, b.id ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return branches, nil
}

// GetBranch loads a branch with its organization.
func (r *Repository) GetBranch(ctx context.Context, id int64) (*entity.Branch, error) {
	ctx, span := repoTracer.Start(ctx, "OrganizationRepository.GetBranch", trace.WithAttributes(attribute.Int64("branch.id", id)))
	defer span.End()

	branch := new(entity.Branch)
	if err := r.reader.NewSelect().Model(branch).Relation("Organization").Where("b.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(span, err, ErrBranchNotFound)
	}
	return branch, nil
}

// CreateBranch inserts a branch.
func (r *Repository) CreateBranch(ctx context.Context, branch *entity.Branch) error {
	ctx, span := repoTracer.Start(ctx, "OrganizationRepository.CreateBranch")
	defer span.End()

	if _, err := r.writer.NewInsert().Model(branch).Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

// UpdateBranch writes name and address.
func (r *Repository) UpdateBranch(ctx context.Context, branch *entity.Branch) error {
	ctx, span := repoTracer.Start(ctx, "OrganizationRepository.UpdateBranch", trace.WithAttributes(attribute.Int64("branch.id", branch.ID)))
	defer span.End()

	if _, err := r.writer.NewUpdate().Model(branch).Column("name", "address").WherePK().Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	return nil
}

// GetOrganization loads an organization.
func (r *Repository) GetOrganization(ctx context.Context, id int64) (*entity.Organization, error) {
	ctx, span := repoTracer.Start(ctx, "OrganizationRepository.GetOrganization", trace.WithAttributes(attribute.Int64("organization.id", id)))
	defer span.End()

	org := new(entity.Organization)
	if err := r.reader.NewSelect().Model(org).Where("org.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(span, err, ErrOrganizationNotFound)
	}
	return org, nil
}

// UpdateBranding writes the branding columns.
func (r *Repository) UpdateBranding(ctx context.Context, org *entity.Organization) error {
	ctx, span := repoTracer.Start(ctx, "OrganizationRepository.UpdateBranding", trace.WithAttributes(attribute.Int64("organization.id", org.ID)))
	defer span.End()

	_, err := r.writer.NewUpdate().
		Model(org).
		Column("name", "logo", "primary_color", "secondary_color", "domain").
		WherePK().
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	return nil
}
