package http

import (
	"go.uber.org/fx"

	carttransport "github.com/hotelprocure/procure/internal/transport/http/cart"
	catalogtransport "github.com/hotelprocure/procure/internal/transport/http/catalog"
	ordertransport "github.com/hotelprocure/procure/internal/transport/http/order"
	orgtransport "github.com/hotelprocure/procure/internal/transport/http/organization"
	reporttransport "github.com/hotelprocure/procure/internal/transport/http/report"
	shipmenttransport "github.com/hotelprocure/procure/internal/transport/http/shipment"
	suppliertransport "github.com/hotelprocure/procure/internal/transport/http/supplier"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	catalogtransport.Module,
	carttransport.Module,
	ordertransport.Module,
	reporttransport.Module,
	suppliertransport.Module,
	orgtransport.Module,
	shipmenttransport.Module,
)
