package order

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/hotelprocure/procure/internal/database"
	"github.com/hotelprocure/procure/internal/entity"
	"github.com/hotelprocure/procure/pkg/money"
)

type fixture struct {
	repo    *Repository
	db      *bun.DB
	branch  *entity.Branch
	user    *entity.User
	beef    *entity.ProductOffer
	carrots *entity.ProductOffer
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	models := []any{
		(*entity.Organization)(nil), (*entity.Branch)(nil), (*entity.User)(nil),
		(*entity.Category)(nil), (*entity.Supplier)(nil), (*entity.Product)(nil),
		(*entity.ProductOffer)(nil), (*entity.Order)(nil), (*entity.OrderItem)(nil),
	}
	for _, m := range models {
		_, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	org := &entity.Organization{Name: "Hotely Praha", CreatedAt: time.Now()}
	insert(t, db, org)
	branch := &entity.Branch{Name: "Hotel Centrum", OrganizationID: org.ID, CreatedAt: time.Now()}
	insert(t, db, branch)
	user := &entity.User{Name: "Jana", Email: "jana@example.com", PasswordHash: "x", Roles: []string{"ROLE_USER"}, CreatedAt: time.Now()}
	insert(t, db, user)
	cat := &entity.Category{Name: "Maso"}
	insert(t, db, cat)
	makro := &entity.Supplier{Name: "Makro", Status: entity.SupplierActive}
	insert(t, db, makro)
	bidfood := &entity.Supplier{Name: "Bidfood", Status: entity.SupplierActive}
	insert(t, db, bidfood)
	p1 := &entity.Product{Name: "Hovězí svíčková", Unit: "kg", CategoryID: cat.ID}
	insert(t, db, p1)
	p2 := &entity.Product{Name: "Mrkev", Unit: "kg", CategoryID: cat.ID}
	insert(t, db, p2)
	beef := &entity.ProductOffer{ProductID: p1.ID, SupplierID: makro.ID, Price: money.MustParse("10.00"), Currency: "CZK", IsActive: true}
	insert(t, db, beef)
	carrots := &entity.ProductOffer{ProductID: p2.ID, SupplierID: bidfood.ID, Price: money.MustParse("5.50"), Currency: "CZK", IsActive: true}
	insert(t, db, carrots)

	return &fixture{
		repo:    &Repository{writer: db, reader: db},
		db:      db,
		branch:  branch,
		user:    user,
		beef:    beef,
		carrots: carrots,
	}
}

func insert(t *testing.T, db *bun.DB, model any) {
	t.Helper()
	_, err := db.NewInsert().Model(model).Exec(context.Background())
	require.NoError(t, err)
}

func (f *fixture) newOrder(number string, created time.Time) *entity.Order {
	o := entity.NewOrder(f.branch, f.user, entity.PriorityMedium, "CZK", created)
	o.OrderNumber = number
	o.AddItem(f.beef, 3)
	o.AddItem(f.carrots, 2)
	return o
}

func TestCreateAndGet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	o := f.newOrder("OBJ-2026-001", time.Now().UTC())
	require.NoError(t, f.repo.Create(ctx, o))
	require.NotZero(t, o.ID)

	got, err := f.repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "OBJ-2026-001", got.OrderNumber)
	assert.Equal(t, entity.StatusDraft, got.Status)
	assert.Equal(t, "41.00", got.TotalAmount.String())
	require.Len(t, got.Items, 2)
	assert.Equal(t, "30.00", got.Items[0].TotalPrice.String())
	require.NotNil(t, got.Items[0].ProductOffer)
	require.NotNil(t, got.Items[0].ProductOffer.Product)
	assert.Equal(t, "Hovězí svíčková", got.Items[0].ProductOffer.Product.Name)
	require.NotNil(t, got.Branch)
	assert.Equal(t, "Hotel Centrum", got.Branch.Name)

	_, err = f.repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateDuplicateNumber(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.repo.Create(ctx, f.newOrder("OBJ-2026-001", time.Now())))

	dup := f.newOrder("OBJ-2026-001", time.Now())
	err := f.repo.Create(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateNumber)
	assert.Zero(t, dup.ID)

	count, err := f.db.NewSelect().Model((*entity.OrderItem)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLatestNumber(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	n, err := f.repo.LatestNumber(ctx, "OBJ-2026-")
	require.NoError(t, err)
	assert.Empty(t, n)

	for _, num := range []string{"OBJ-2025-008", "OBJ-2026-001", "OBJ-2026-002"} {
		require.NoError(t, f.repo.Create(ctx, f.newOrder(num, time.Now())))
	}

	n, err = f.repo.LatestNumber(ctx, "OBJ-2026-")
	require.NoError(t, err)
	assert.Equal(t, "OBJ-2026-002", n)

	n, err = f.repo.LatestNumber(ctx, "OBJ-2025-")
	require.NoError(t, err)
	assert.Equal(t, "OBJ-2025-008", n)
}

func TestUpdateStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	o := f.newOrder("OBJ-2026-001", time.Now())
	require.NoError(t, f.repo.Create(ctx, o))

	require.NoError(t, o.Submit(time.Now()))
	require.NoError(t, f.repo.UpdateStatus(ctx, o, entity.StatusDraft))

	got, err := f.repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSubmitted, got.Status)
	assert.NotNil(t, got.SubmittedAt)

	// a second writer still believing the order is a draft loses
	stale := *got
	stale.Status = entity.StatusSubmitted
	assert.ErrorIs(t, f.repo.UpdateStatus(ctx, &stale, entity.StatusDraft), ErrStale)
}

func TestListAndAggregates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	old := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)

	a := f.newOrder("OBJ-2026-001", old)
	require.NoError(t, f.repo.Create(ctx, a))
	b := f.newOrder("OBJ-2026-002", recent)
	require.NoError(t, f.repo.Create(ctx, b))
	require.NoError(t, b.Submit(recent))
	require.NoError(t, f.repo.UpdateStatus(ctx, b, entity.StatusDraft))

	all, err := f.repo.List(ctx, Filter{CreatedByID: f.user.ID})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID)

	submitted, err := f.repo.List(ctx, Filter{Status: entity.StatusSubmitted, WithItems: true})
	require.NoError(t, err)
	require.Len(t, submitted, 1)
	assert.Len(t, submitted[0].Items, 2)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	windowed, err := f.repo.List(ctx, Filter{From: &from})
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, "OBJ-2026-002", windowed[0].OrderNumber)

	counts, err := f.repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[entity.OrderStatus]int{entity.StatusDraft: 1, entity.StatusSubmitted: 1}, counts)

	total, err := f.repo.TotalAmount(ctx)
	require.NoError(t, err)
	assert.Equal(t, "82.00", total.String())

	n, err := f.repo.CountForSupplierSince(ctx, f.beef.SupplierID, from)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = f.repo.CountForSupplierSince(ctx, f.beef.SupplierID, old.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
