package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/hotelprocure/procure/internal/config"
	"github.com/hotelprocure/procure/internal/entity"
	"github.com/hotelprocure/procure/internal/kv"
	orderservice "github.com/hotelprocure/procure/internal/service/order"
	"github.com/hotelprocure/procure/pkg/errorbank"
	"github.com/hotelprocure/procure/pkg/money"
)

var serviceTracer = otel.Tracer("github.com/hotelprocure/procure/service/cart")

// Offers resolves product offers by id.
type Offers interface {
	OffersByIDs(ctx context.Context, ids []int64) (map[int64]*entity.ProductOffer, error)
}

// Orders creates orders from a checked out cart.
type Orders interface {
	Create(ctx context.Context, actorID int64, in orderservice.CreateInput) (*entity.Order, error)
}

// Line is a stored cart entry.
type Line struct {
	OfferID  int64 `json:"productOfferId"`
	Quantity int   `json:"quantity"`
}

// Item is a cart line priced against the current offer.
type Item struct {
	Offer      *entity.ProductOffer
	Quantity   int
	UnitPrice  money.Money
	TotalPrice money.Money
}

// View is a hydrated cart.
type View struct {
	Items []Item
	Total money.Money
}

// CheckoutInput carries the order attributes the cart does not hold.
type CheckoutInput struct {
	BranchID int64
	Priority string
	Note     string
}

// Service keeps one cart per user in the KV store.
type Service struct {
	store  kv.Store
	offers Offers
	orders Orders
	ttl    time.Duration
	logger *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store  kv.Store
	Offers Offers
	Orders Orders
	Config config.Config
	Logger *zap.Logger
}

// NewService wires the cart service.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  p.Store,
		offers: p.Offers,
		orders: p.Orders,
		ttl:    p.Config.Cart.TTL,
		logger: logger,
	}
}

func key(userID int64) string {
	return fmt.Sprintf("cart:%d", userID)
}

func (s *Service) load(ctx context.Context, userID int64) ([]Line, error) {
	raw, err := s.store.Get(ctx, key(userID))
	if errors.Is(err, kv.ErrNotFound) {
		return []Line{}, nil
	}
	if err != nil {
		return nil, errorbank.Internal("failed to read cart", errorbank.WithCause(err))
	}
	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		s.logger.Warn("discarding unreadable cart", zap.Int64("user_id", userID), zap.Error(err))
		return []Line{}, nil
	}
	return lines, nil
}

func (s *Service) save(ctx context.Context, userID int64, lines []Line) error {
	if len(lines) == 0 {
		if err := s.store.Delete(ctx, key(userID)); err != nil {
			return errorbank.Internal("failed to clear cart", errorbank.WithCause(err))
		}
		return nil
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return errorbank.Internal("failed to encode cart", errorbank.WithCause(err))
	}
	if err := s.store.Set(ctx, key(userID), raw, s.ttl); err != nil {
		return errorbank.Internal("failed to store cart", errorbank.WithCause(err))
	}
	return nil
}

func (s *Service) hydrate(ctx context.Context, lines []Line) (*View, error) {
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.OfferID)
	}
	offers, err := s.offers.OffersByIDs(ctx, ids)
	if err != nil {
		return nil, errorbank.Internal("failed to load offers", errorbank.WithCause(err))
	}

	view := &View{Items: make([]Item, 0, len(lines)), Total: money.Zero()}
	for _, l := range lines {
		offer, ok := offers[l.OfferID]
		if !ok {
			continue
		}
		item := Item{
			Offer:      offer,
			Quantity:   l.Quantity,
			UnitPrice:  offer.Price,
			TotalPrice: offer.Price.MulInt(l.Quantity),
		}
		view.Items = append(view.Items, item)
		view.Total = money.Add(view.Total, item.TotalPrice)
	}
	return view, nil
}

func requireUser(userID int64) error {
	if userID == 0 {
		return errorbank.Unauthorized("acting user is required")
	}
	return nil
}

// Get returns the user's cart priced at current offer prices. Lines whose offer vanished are hidden.
func (s *Service) Get(ctx context.Context, userID int64) (*View, error) {
	ctx, span := serviceTracer.Start(ctx, "CartService.Get", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	lines, err := s.load(ctx, userID)
	if err != nil {
		span.SetStatus(codes.Error, "load failed")
		return nil, err
	}
	return s.hydrate(ctx, lines)
}

// Add puts an offer into the cart, merging with an existing line. Quantity 0 means 1.
func (s *Service) Add(ctx context.Context, userID, offerID int64, quantity int) (*View, error) {
	ctx, span := serviceTracer.Start(ctx, "CartService.Add", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("offer.id", offerID),
	))
	defer span.End()

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if offerID == 0 {
		return nil, errorbank.BadRequest("productOfferId is required")
	}
	if quantity < 0 {
		return nil, errorbank.BadRequest("quantity must be positive")
	}
	if quantity == 0 {
		quantity = 1
	}
	offers, err := s.offers.OffersByIDs(ctx, []int64{offerID})
	if err != nil {
		return nil, errorbank.Internal("failed to load offer", errorbank.WithCause(err))
	}
	if _, ok := offers[offerID]; !ok {
		return nil, errorbank.NotFound("product offer not found")
	}

	lines, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	merged := false
	for i := range lines {
		if lines[i].OfferID == offerID {
			lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, Line{OfferID: offerID, Quantity: quantity})
	}
	if err := s.save(ctx, userID, lines); err != nil {
		return nil, err
	}
	return s.hydrate(ctx, lines)
}

// Update sets the quantity of a line. Quantity 0 removes the line; unknown offers are ignored.
func (s *Service) Update(ctx context.Context, userID, offerID int64, quantity int) (*View, error) {
	ctx, span := serviceTracer.Start(ctx, "CartService.Update", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("offer.id", offerID),
	))
	defer span.End()

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if offerID == 0 {
		return nil, errorbank.BadRequest("productOfferId is required")
	}
	if quantity < 0 {
		return nil, errorbank.BadRequest("quantity must be positive")
	}
	if quantity == 0 {
		return s.Remove(ctx, userID, offerID)
	}

	lines, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		if lines[i].OfferID == offerID {
			lines[i].Quantity = quantity
			break
		}
	}
	if err := s.save(ctx, userID, lines); err != nil {
		return nil, err
	}
	return s.hydrate(ctx, lines)
}

// Remove drops the line for offerID.
func (s *Service) Remove(ctx context.Context, userID, offerID int64) (*View, error) {
	ctx, span := serviceTracer.Start(ctx, "CartService.Remove", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("offer.id", offerID),
	))
	defer span.End()

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	lines, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	kept := lines[:0]
	for _, l := range lines {
		if l.OfferID != offerID {
			kept = append(kept, l)
		}
	}
	if err := s.save(ctx, userID, kept); err != nil {
		return nil, err
	}
	return s.hydrate(ctx, kept)
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	ctx, span := serviceTracer.Start(ctx, "CartService.Clear", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	if err := requireUser(userID); err != nil {
		return err
	}
	return s.save(ctx, userID, nil)
}

// Checkout turns the cart into a draft order and empties the cart.
func (s *Service) Checkout(ctx context.Context, userID int64, in CheckoutInput) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "CartService.Checkout", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("order.branch_id", in.BranchID),
	))
	defer span.End()

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	lines, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errorbank.BadRequest("cart is empty")
	}

	items := make([]orderservice.ItemInput, 0, len(lines))
	for _, l := range lines {
		items = append(items, orderservice.ItemInput{OfferID: l.OfferID, Quantity: l.Quantity})
	}
	order, err := s.orders.Create(ctx, userID, orderservice.CreateInput{
		BranchID: in.BranchID,
		Items:    items,
		Priority: in.Priority,
		Note:     in.Note,
	})
	if err != nil {
		span.SetStatus(codes.Error, "order creation failed")
		return nil, err
	}

	if err := s.save(ctx, userID, nil); err != nil {
		s.logger.Warn("cart not cleared after checkout",
			zap.Int64("user_id", userID),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}
	return order, nil
}
