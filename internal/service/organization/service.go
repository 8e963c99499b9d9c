package organization

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/hotelprocure/procure/internal/entity"
	repo "github.com/hotelprocure/procure/internal/repository/organization"
	"github.com/hotelprocure/procure/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/hotelprocure/procure/service/organization")

// Colors used when an organization has not chosen its own.
const (
	DefaultPrimaryColor   = "#2D4739"
	DefaultSecondaryColor = "#C9A227"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Repository is the persistence the service needs.
type Repository interface {
	PrimaryMembership(ctx context.Context, userID int64) (*entity.UserOrganization, error)
	ListBranches(ctx context.Context, organizationID int64) ([]*entity.Branch, error)
	GetBranch(ctx context.Context, id int64) (*entity.Branch, error)
	CreateBranch(ctx context.Context, branch *entity.Branch) error
	UpdateBranch(ctx context.Context, branch *entity.Branch) error
	UpdateBranding(ctx context.Context, org *entity.Organization) error
}

// BranchInput carries branch fields. Nil fields are left unchanged on update.
type BranchInput struct {
	Name    *string
	Address *string
}

// BrandingInput carries branding fields. Nil fields are left unchanged.
type BrandingInput struct {
	Name           *string
	Logo           *string
	PrimaryColor   *string
	SecondaryColor *string
	Domain         *string
}

// Service manages the acting user's organization.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository Repository
	Logger     *zap.Logger
}

// NewService wires the organization service.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: p.Repository, logger: logger}
}

func (s *Service) organizationOf(ctx context.Context, span trace.Span, actorID int64) (*entity.Organization, error) {
	if actorID == 0 {
		return nil, errorbank.Unauthorized("acting user is required")
	}
	m, err := s.repo.PrimaryMembership(ctx, actorID)
	if err != nil {
		if errors.Is(err, repo.ErrNoMembership) {
			return nil, errorbank.NotFound("no organization found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to resolve organization", errorbank.WithCause(err))
	}
	if m.Organization == nil {
		return &entity.Organization{ID: m.OrganizationID}, nil
	}
	return m.Organization, nil
}

// Branches lists the branches of the acting user's organization.
func (s *Service) Branches(ctx context.Context, actorID int64) ([]*entity.Branch, error) {
	ctx, span := serviceTracer.Start(ctx, "OrganizationService.Branches")
	defer span.End()

	org, err := s.organizationOf(ctx, span, actorID)
	if err != nil {
		return nil, err
	}
	branches, err := s.repo.ListBranches(ctx, org.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list branches", errorbank.WithCause(err))
	}
	for _, b := range branches {
		b.Organization = org
	}
	return branches, nil
}

// CreateBranch adds a branch to the acting user's organization.
func (s *Service) CreateBranch(ctx context.Context, actorID int64, in BranchInput) (*entity.Branch, error) {
	ctx, span := serviceTracer.Start(ctx, "OrganizationService.CreateBranch")
	defer span.End()

	org, err := s.organizationOf(ctx, span, actorID)
	if err != nil {
		return nil, err
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, errorbank.BadRequest("name is required")
	}
	branch := &entity.Branch{
		Name:           strings.TrimSpace(*in.Name),
		OrganizationID: org.ID,
		Organization:   org,
	}
	if in.Address != nil {
		branch.Address = strings.TrimSpace(*in.Address)
	}
	if err := s.repo.CreateBranch(ctx, branch); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create branch", errorbank.WithCause(err))
	}
	s.logger.Info("branch created",
		zap.Int64("branch_id", branch.ID),
		zap.Int64("organization_id", org.ID),
		zap.Int64("actor_id", actorID),
	)
	return branch, nil
}

// UpdateBranch edits a branch of the acting user's organization.
func (s *Service) UpdateBranch(ctx context.Context, actorID, id int64, in BranchInput) (*entity.Branch, error) {
	ctx, span := serviceTracer.Start(ctx, "OrganizationService.UpdateBranch", trace.WithAttributes(attribute.Int64("branch.id", id)))
	defer span.End()

	org, err := s.organizationOf(ctx, span, actorID)
	if err != nil {
		return nil, err
	}
	branch, err := s.repo.GetBranch(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrBranchNotFound) {
			return nil, errorbank.NotFound("branch not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load branch", errorbank.WithCause(err))
	}
	if branch.OrganizationID != org.ID {
		return nil, errorbank.Forbidden("access denied")
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, errorbank.BadRequest("name must not be empty")
		}
		branch.Name = name
	}
	if in.Address != nil {
		branch.Address = strings.TrimSpace(*in.Address)
	}
	if err := s.repo.UpdateBranch(ctx, branch); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update branch", errorbank.WithCause(err))
	}
	return branch, nil
}

// Branding returns the acting user's organization with default colors filled in.
func (s *Service) Branding(ctx context.Context, actorID int64) (*entity.Organization, error) {
	ctx, span := serviceTracer.Start(ctx, "OrganizationService.Branding")
	defer span.End()

	org, err := s.organizationOf(ctx, span, actorID)
	if err != nil {
		return nil, err
	}
	branded := *org
	if branded.PrimaryColor == "" {
		branded.PrimaryColor = DefaultPrimaryColor
	}
	if branded.SecondaryColor == "" {
		branded.SecondaryColor = DefaultSecondaryColor
	}
	return &branded, nil
}

// UpdateBranding changes the organization's name, logo, colors or domain.
func (s *Service) UpdateBranding(ctx context.Context, actorID int64, in BrandingInput) (*entity.Organization, error) {
	ctx, span := serviceTracer.Start(ctx, "OrganizationService.UpdateBranding")
	defer span.End()

	org, err := s.organizationOf(ctx, span, actorID)
	if err != nil {
		return nil, err
	}
	for field, color := range map[string]*string{"primaryColor": in.PrimaryColor, "secondaryColor": in.SecondaryColor} {
		if color != nil && !hexColor.MatchString(*color) {
			return nil, errorbank.BadRequest("color must be formatted as #rrggbb",
				errorbank.WithDetail("field", field))
		}
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, errorbank.BadRequest("name must not be empty")
		}
		org.Name = name
	}
	if in.Logo != nil {
		org.Logo = strings.TrimSpace(*in.Logo)
	}
	if in.PrimaryColor != nil {
		org.PrimaryColor = *in.PrimaryColor
	}
	if in.SecondaryColor != nil {
		org.SecondaryColor = *in.SecondaryColor
	}
	if in.Domain != nil {
		org.Domain = strings.TrimSpace(*in.Domain)
	}
	if err := s.repo.UpdateBranding(ctx, org); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update branding", errorbank.WithCause(err))
	}
	s.logger.Info("branding updated", zap.Int64("organization_id", org.ID), zap.Int64("actor_id", actorID))
	return org, nil
}
