package supplier

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/hotelprocure/procure/internal/config"
	"github.com/hotelprocure/procure/internal/messaging"
	suppliersvc "github.com/hotelprocure/procure/internal/service/supplier"
	"github.com/hotelprocure/procure/internal/worker"
)

var workerTracer = otel.Tracer("github.com/hotelprocure/procure/worker/supplier")

// Module registers supplier-related worker handlers.
var Module = fx.Module("worker_supplier",
	fx.Provide(
		func(s *suppliersvc.Service) CounterRefresher { return s },
		fx.Annotate(
			NewCountersHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// CounterRefresher recomputes a supplier's stored counters.
type CounterRefresher interface {
	RefreshCounters(ctx context.Context, supplierID int64) error
}

// NewCountersHandler refreshes productCount and ordersPerMonth for every supplier
// touched by an order lifecycle event.
func NewCountersHandler(logger *zap.Logger, cfg config.Config, refresher CounterRefresher) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.suppliers.counters", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		event, err := messaging.DecodeOrderEvent(msg)
		if err != nil {
			logger.Error("failed to decode order event", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}
		span.SetAttributes(
			attribute.String("event.type", event.Type),
			attribute.Int64("order.id", event.OrderID),
		)

		var errs []error
		for _, id := range event.SupplierIDs {
			if err := refresher.RefreshCounters(ctx, id); err != nil {
				logger.Warn("refresh supplier counters",
					zap.Int64("supplier_id", id),
					zap.String("event", event.Type),
					zap.Error(err),
				)
				errs = append(errs, err)
			}
		}
		if err := errors.Join(errs...); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "refresh failed")
			return err
		}

		logger.Debug("supplier counters refreshed",
			zap.String("event", event.Type),
			zap.Int64("order_id", event.OrderID),
			zap.Int64s("supplier_ids", event.SupplierIDs),
		)
		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
