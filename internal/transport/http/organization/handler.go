package organization

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hotelprocure/procure/internal/dto"
	"github.com/hotelprocure/procure/internal/entity"
	"github.com/hotelprocure/procure/internal/presentation/http/identity"
	"github.com/hotelprocure/procure/internal/presentation/http/request"
	"github.com/hotelprocure/procure/internal/presentation/http/response"
	service "github.com/hotelprocure/procure/internal/service/organization"
)

var httpTracer = otel.Tracer("github.com/hotelprocure/procure/transport/http/organization")

// Service is the organization behaviour the handler exposes.
type Service interface {
	Branches(ctx context.Context, actorID int64) ([]*entity.Branch, error)
	CreateBranch(ctx context.Context, actorID int64, in service.BranchInput) (*entity.Branch, error)
	UpdateBranch(ctx context.Context, actorID, id int64, in service.BranchInput) (*entity.Branch, error)
	Branding(ctx context.Context, actorID int64) (*entity.Organization, error)
	UpdateBranding(ctx context.Context, actorID int64, in service.BrandingInput) (*entity.Organization, error)
}

// Handler exposes branches and organization settings over HTTP.
type Handler struct {
	svc Service
}

// NewHandler constructs an organization Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	branches := e.Group("/api/branches")
	branches.GET("", h.branches)
	branches.POST("", h.createBranch)
	branches.PUT("/:id", h.updateBranch)

	settings := e.Group("/api/settings")
	settings.GET("/branding", h.branding)
	settings.PUT("/branding", h.updateBranding)
}

type branchPayload struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

func (p branchPayload) input() service.BranchInput {
	return service.BranchInput{Name: p.Name, Address: p.Address}
}

func (h *Handler) branches(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "branches.list")
	defer span.End()

	branches, err := h.svc.Branches(ctx, identity.ActorID(c))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewBranchListResponse(branches)).Build()
}

func (h *Handler) createBranch(c echo.Context) error {
	b := response.New(c)

	var payload branchPayload
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "branches.create")
	defer span.End()

	branch, err := h.svc.CreateBranch(ctx, identity.ActorID(c), payload.input())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.Created(fmt.Sprintf("/api/branches/%d", branch.ID), dto.NewBranchResponse(branch)).Build()
}

func (h *Handler) updateBranch(c echo.Context) error {
	b := response.New(c)

	id, err := request.PathID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}
	var payload branchPayload
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "branches.update", trace.WithAttributes(attribute.Int64("branch.id", id)))
	defer span.End()

	branch, err := h.svc.UpdateBranch(ctx, identity.ActorID(c), id, payload.input())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewBranchResponse(branch)).Build()
}

func (h *Handler) branding(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "settings.branding")
	defer span.End()

	org, err := h.svc.Branding(ctx, identity.ActorID(c))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewBrandingResponse(org)).Build()
}

func (h *Handler) updateBranding(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		Name           *string `json:"name"`
		Logo           *string `json:"logo"`
		PrimaryColor   *string `json:"primaryColor"`
		SecondaryColor *string `json:"secondaryColor"`
		Domain         *string `json:"domain"`
	}
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "settings.updateBranding")
	defer span.End()

	org, err := h.svc.UpdateBranding(ctx, identity.ActorID(c), service.BrandingInput{
		Name:           payload.Name,
		Logo:           payload.Logo,
		PrimaryColor:   payload.PrimaryColor,
		SecondaryColor: payload.SecondaryColor,
		Domain:         payload.Domain,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewBrandingResponse(org)).Build()
}
