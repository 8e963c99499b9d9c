package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelprocure/procure/internal/config"
	"github.com/hotelprocure/procure/internal/entity"
	"github.com/hotelprocure/procure/internal/messaging"
	repo "github.com/hotelprocure/procure/internal/repository/order"
	orgrepo "github.com/hotelprocure/procure/internal/repository/organization"
	"github.com/hotelprocure/procure/pkg/errorbank"
	"github.com/hotelprocure/procure/pkg/money"
)

type fakeRepo struct {
	mu       sync.Mutex
	orders   map[int64]*entity.Order
	numbers  map[string]bool
	nextID   int64
	failWith error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: map[int64]*entity.Order{}, numbers: map[string]bool{}}
}

func (f *fakeRepo) Create(_ context.Context, o *entity.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	if f.numbers[o.OrderNumber] {
		return repo.ErrDuplicateNumber
	}
	f.nextID++
	o.ID = f.nextID
	f.numbers[o.OrderNumber] = true
	copied := *o
	f.orders[o.ID] = &copied
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (f *fakeRepo) List(_ context.Context, filter repo.Filter) ([]*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.Order, 0)
	for id := int64(1); id <= f.nextID; id++ {
		o, ok := f.orders[id]
		if !ok {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.CreatedByID != 0 && o.CreatedByID != filter.CreatedByID {
			continue
		}
		copied := *o
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, o *entity.Order, from entity.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.orders[o.ID]
	if !ok || stored.Status != from {
		return repo.ErrStale
	}
	copied := *o
	f.orders[o.ID] = &copied
	return nil
}

type fakeOffers map[int64]*entity.ProductOffer

func (f fakeOffers) OffersByIDs(_ context.Context, ids []int64) (map[int64]*entity.ProductOffer, error) {
	out := map[int64]*entity.ProductOffer{}
	for _, id := range ids {
		if o, ok := f[id]; ok {
			out[id] = o
		}
	}
	return out, nil
}

type fakeDirectory struct{}

func (fakeDirectory) GetUser(_ context.Context, id int64) (*entity.User, error) {
	if id > 100 {
		return nil, orgrepo.ErrUserNotFound
	}
	return &entity.User{ID: id, Name: fmt.Sprintf("user-%d", id)}, nil
}

func (fakeDirectory) GetBranch(_ context.Context, id int64) (*entity.Branch, error) {
	if id != 1 {
		return nil, orgrepo.ErrBranchNotFound
	}
	return &entity.Branch{ID: 1, Name: "Hotel Centrum"}, nil
}

type fakeNumbers struct {
	seq     int
	resyncs int
	skipTo  int
}

func (f *fakeNumbers) Next(_ context.Context, year int) (string, error) {
	f.seq++
	return fmt.Sprintf("OBJ-%d-%03d", year, f.seq), nil
}

func (f *fakeNumbers) Resync(context.Context, int) error {
	f.resyncs++
	if f.skipTo > f.seq {
		f.seq = f.skipTo
	}
	return nil
}

type fakePublisher struct {
	messages []messaging.Message
}

func (p *fakePublisher) Publish(_ context.Context, msg messaging.Message) error {
	p.messages = append(p.messages, msg)
	return nil
}

func (p *fakePublisher) Consume(ctx context.Context, _ messaging.Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (p *fakePublisher) Topic() string { return "procure.orders" }

type harness struct {
	svc       *Service
	repo      *fakeRepo
	numbers   *fakeNumbers
	publisher *fakePublisher
	now       time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		repo:      newFakeRepo(),
		numbers:   &fakeNumbers{},
		publisher: &fakePublisher{},
		now:       time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC),
	}
	offers := fakeOffers{
		10: {ID: 10, SupplierID: 1, Price: money.MustParse("10.00"), IsActive: true},
		11: {ID: 11, SupplierID: 2, Price: money.MustParse("5.50"), IsActive: true},
	}
	cfg := config.Config{
		Messaging: config.Messaging{Enabled: true},
		Ordering:  config.Ordering{AllocationRetries: 3, Currency: "CZK"},
	}
	svc, err := NewService(Params{
		Repository: h.repo,
		Offers:     offers,
		Directory:  fakeDirectory{},
		Numbers:    h.numbers,
		Config:     cfg,
		Publisher:  h.publisher,
	})
	require.NoError(t, err)
	svc.now = func() time.Time { return h.now }
	h.svc = svc
	return h
}

func (h *harness) create(t *testing.T, priority string) *entity.Order {
	t.Helper()
	o, err := h.svc.Create(context.Background(), 5, CreateInput{
		BranchID: 1,
		Priority: priority,
		Items:    []ItemInput{{OfferID: 10, Quantity: 3}, {OfferID: 11, Quantity: 2}},
	})
	require.NoError(t, err)
	return o
}

func kindOf(err error) errorbank.Kind {
	return errorbank.From(err).Kind()
}

func TestCreate(t *testing.T) {
	h := newHarness(t)

	o := h.create(t, "")

	assert.Equal(t, "OBJ-2026-001", o.OrderNumber)
	assert.Equal(t, entity.StatusDraft, o.Status)
	assert.Equal(t, entity.PriorityMedium, o.Priority)
	assert.Equal(t, "41.00", o.TotalAmount.String())
	assert.Equal(t, "CZK", o.Currency)
	assert.Equal(t, int64(5), o.CreatedByID)
	require.Len(t, h.publisher.messages, 1)
	assert.Equal(t, messaging.EventOrderCreated, h.publisher.messages[0].Headers[messaging.HeaderEventType])
}

func TestCreateSkipsUnknownOffersAndDefaultsQuantity(t *testing.T) {
	h := newHarness(t)

	o, err := h.svc.Create(context.Background(), 5, CreateInput{
		BranchID: 1,
		Items:    []ItemInput{{OfferID: 999, Quantity: 4}, {OfferID: 11}},
	})
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 1, o.Items[0].Quantity)
	assert.Equal(t, "5.50", o.TotalAmount.String())
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	items := []ItemInput{{OfferID: 10, Quantity: 1}}

	cases := []struct {
		name  string
		actor int64
		in    CreateInput
		kind  errorbank.Kind
	}{
		{"no actor", 0, CreateInput{BranchID: 1, Items: items}, errorbank.KindUnauthorized},
		{"unknown actor", 500, CreateInput{BranchID: 1, Items: items}, errorbank.KindUnauthorized},
		{"no branch", 5, CreateInput{Items: items}, errorbank.KindBadRequest},
		{"unknown branch", 5, CreateInput{BranchID: 2, Items: items}, errorbank.KindNotFound},
		{"no items", 5, CreateInput{BranchID: 1}, errorbank.KindBadRequest},
		{"bad priority", 5, CreateInput{BranchID: 1, Items: items, Priority: "urgent"}, errorbank.KindBadRequest},
		{"negative quantity", 5, CreateInput{BranchID: 1, Items: []ItemInput{{OfferID: 10, Quantity: -1}}}, errorbank.KindBadRequest},
		{"only unknown offers", 5, CreateInput{BranchID: 1, Items: []ItemInput{{OfferID: 404, Quantity: 1}}}, errorbank.KindBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.svc.Create(ctx, tc.actor, tc.in)
			require.Error(t, err)
			assert.Equal(t, tc.kind, kindOf(err))
		})
	}
	assert.Empty(t, h.repo.orders)
}

func TestCreateRetriesOnNumberCollision(t *testing.T) {
	h := newHarness(t)
	h.repo.numbers["OBJ-2026-001"] = true
	h.repo.numbers["OBJ-2026-002"] = true
	h.numbers.skipTo = 2

	o := h.create(t, "high")
	assert.Equal(t, "OBJ-2026-003", o.OrderNumber)
	assert.Equal(t, 1, h.numbers.resyncs)
}

func TestCreateGivesUpAfterBoundedRetries(t *testing.T) {
	h := newHarness(t)
	for i := 1; i <= 10; i++ {
		h.repo.numbers[fmt.Sprintf("OBJ-2026-%03d", i)] = true
	}

	_, err := h.svc.Create(context.Background(), 5, CreateInput{BranchID: 1, Items: []ItemInput{{OfferID: 10, Quantity: 1}}})
	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, kindOf(err))
	assert.Equal(t, 3, h.numbers.resyncs)
}

func TestCreateRepositoryFailure(t *testing.T) {
	h := newHarness(t)
	h.repo.failWith = errors.New("disk full")

	_, err := h.svc.Create(context.Background(), 5, CreateInput{BranchID: 1, Items: []ItemInput{{OfferID: 10, Quantity: 1}}})
	assert.Equal(t, errorbank.KindInternal, kindOf(err))
}

func TestLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.create(t, "")

	submitted, err := h.svc.Submit(ctx, 5, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)
	assert.True(t, submitted.SubmittedAt.Equal(h.now))

	h.now = h.now.Add(time.Hour)
	_, err = h.svc.Submit(ctx, 5, o.ID)
	assert.Equal(t, errorbank.KindInvalidTransition, kindOf(err))
	stored, _ := h.repo.GetByID(ctx, o.ID)
	assert.True(t, stored.SubmittedAt.Equal(h.now.Add(-time.Hour)))

	approved, err := h.svc.Approve(ctx, 7, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedByID)
	assert.Equal(t, int64(7), *approved.ApprovedByID)

	_, err = h.svc.Reject(ctx, 7, o.ID)
	assert.Equal(t, errorbank.KindInvalidTransition, kindOf(err))

	ordered, err := h.svc.MarkOrdered(ctx, 7, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusOrdered, ordered.Status)

	delivered, err := h.svc.MarkDelivered(ctx, 7, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDelivered, delivered.Status)

	types := make([]string, 0, len(h.publisher.messages))
	for _, m := range h.publisher.messages {
		types = append(types, m.Headers[messaging.HeaderEventType])
	}
	assert.Equal(t, []string{
		messaging.EventOrderCreated,
		messaging.EventOrderSubmitted,
		messaging.EventOrderApproved,
		messaging.EventOrderOrdered,
		messaging.EventShipmentDelivered,
	}, types)
}

func TestTransitionsRequireActor(t *testing.T) {
	h := newHarness(t)
	o := h.create(t, "")

	_, err := h.svc.Submit(context.Background(), 0, o.ID)
	assert.Equal(t, errorbank.KindUnauthorized, kindOf(err))

	_, err = h.svc.Approve(context.Background(), 5, 999)
	assert.Equal(t, errorbank.KindNotFound, kindOf(err))
}

func TestPendingOrdering(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	low := h.create(t, "low")
	high := h.create(t, "high")
	medium := h.create(t, "medium")
	draft := h.create(t, "high")

	for _, o := range []*entity.Order{low, high, medium} {
		h.now = h.now.Add(time.Minute)
		_, err := h.svc.Submit(ctx, 5, o.ID)
		require.NoError(t, err)
	}

	pending, err := h.svc.Pending(ctx)
	require.NoError(t, err)
	ids := make([]int64, 0, len(pending))
	for _, o := range pending {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []int64{high.ID, medium.ID, low.ID}, ids)
	assert.NotContains(t, ids, draft.ID)
}

func TestListMine(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.create(t, "")
	_, err := h.svc.Submit(ctx, 5, o.ID)
	require.NoError(t, err)
	h.create(t, "")

	all, err := h.svc.ListMine(ctx, 5, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	drafts, err := h.svc.ListMine(ctx, 5, "draft")
	require.NoError(t, err)
	assert.Len(t, drafts, 1)

	_, err = h.svc.ListMine(ctx, 5, "pending")
	assert.Equal(t, errorbank.KindBadRequest, kindOf(err))

	others, err := h.svc.ListMine(ctx, 6, "")
	require.NoError(t, err)
	assert.Empty(t, others)
}
