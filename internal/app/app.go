package app

import (
	"go.uber.org/fx"

	"github.com/hotelprocure/procure/internal/config"
	"github.com/hotelprocure/procure/internal/database"
	"github.com/hotelprocure/procure/internal/kv"
	"github.com/hotelprocure/procure/internal/logger"
	"github.com/hotelprocure/procure/internal/messaging"
	"github.com/hotelprocure/procure/internal/observability"
	"github.com/hotelprocure/procure/internal/ordernumber"
	repositorycatalog "github.com/hotelprocure/procure/internal/repository/catalog"
	repositoryorder "github.com/hotelprocure/procure/internal/repository/order"
	repositoryorganization "github.com/hotelprocure/procure/internal/repository/organization"
	repositoryshipment "github.com/hotelprocure/procure/internal/repository/shipment"
	repositorysupplier "github.com/hotelprocure/procure/internal/repository/supplier"
	grpcserver "github.com/hotelprocure/procure/internal/server/grpc"
	httpserver "github.com/hotelprocure/procure/internal/server/http"
	servicecart "github.com/hotelprocure/procure/internal/service/cart"
	servicecatalog "github.com/hotelprocure/procure/internal/service/catalog"
	serviceorder "github.com/hotelprocure/procure/internal/service/order"
	serviceorganization "github.com/hotelprocure/procure/internal/service/organization"
	servicereport "github.com/hotelprocure/procure/internal/service/report"
	serviceshipment "github.com/hotelprocure/procure/internal/service/shipment"
	servicesupplier "github.com/hotelprocure/procure/internal/service/supplier"
	transporthttp "github.com/hotelprocure/procure/internal/transport/http"
	"github.com/hotelprocure/procure/internal/worker"
	workersupplier "github.com/hotelprocure/procure/internal/worker/supplier"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	kv.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	ordernumber.Module,
	repositorycatalog.Module,
	repositoryorder.Module,
	repositoryorganization.Module,
	repositoryshipment.Module,
	repositorysupplier.Module,
	servicecart.Module,
	servicecatalog.Module,
	serviceorder.Module,
	serviceorganization.Module,
	servicereport.Module,
	serviceshipment.Module,
	servicesupplier.Module,
)

// HTTP wires the HTTP transport and gRPC health endpoint on top of the core modules.
var HTTP = fx.Options(
	Core,
	logger.FxEvents,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	logger.FxEvents,
	worker.Module,
	workersupplier.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
