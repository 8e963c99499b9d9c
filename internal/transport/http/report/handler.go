package report

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hotelprocure/procure/internal/dto"
	"github.com/hotelprocure/procure/internal/presentation/http/response"
	"github.com/hotelprocure/procure/internal/report"
	service "github.com/hotelprocure/procure/internal/service/report"
)

var httpTracer = otel.Tracer("github.com/hotelprocure/procure/transport/http/report")

// Service is the reporting behaviour the handler exposes.
type Service interface {
	Report(ctx context.Context, from, to string) (report.Result, error)
	Dashboard(ctx context.Context) (*service.Dashboard, error)
}

// Handler exposes reports and the dashboard over HTTP.
type Handler struct {
	svc Service
}

// NewHandler constructs a report Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/api/reports", h.report)
	e.GET("/api/dashboard", h.dashboard)
}

func (h *Handler) report(c echo.Context) error {
	b := response.New(c)
	from, to := c.QueryParam("from"), c.QueryParam("to")

	ctx, span := httpTracer.Start(c.Request().Context(), "reports.get", trace.WithAttributes(
		attribute.String("report.from", from),
		attribute.String("report.to", to),
	))
	defer span.End()

	result, err := h.svc.Report(ctx, from, to)
	if err != nil {
		return b.WithError(err).Build()
	}
	if from != "" || to != "" {
		b.WithMeta("from", from).WithMeta("to", to)
	}
	return b.WithData(result).Build()
}

func (h *Handler) dashboard(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "dashboard.get")
	defer span.End()

	d, err := h.svc.Dashboard(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewDashboardResponse(d)).Build()
}
