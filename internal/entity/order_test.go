package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelprocure/procure/pkg/money"
)

func offer(id int64, price string) *ProductOffer {
	return &ProductOffer{ID: id, SupplierID: id * 10, Price: money.MustParse(price), Currency: "CZK", IsActive: true}
}

func draftOrder(t *testing.T) *Order {
	t.Helper()
	return NewOrder(&Branch{ID: 1}, &User{ID: 2}, PriorityMedium, "", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
}

func TestOrderTotals(t *testing.T) {
	o := draftOrder(t)
	assert.Equal(t, "0.00", o.TotalAmount.String())
	assert.Equal(t, "CZK", o.Currency)

	first := o.AddItem(offer(1, "10.00"), 3)
	second := o.AddItem(offer(2, "5.50"), 2)

	assert.Equal(t, "30.00", first.TotalPrice.String())
	assert.Equal(t, "11.00", second.TotalPrice.String())
	assert.Equal(t, "41.00", o.TotalAmount.String())

	o.SetItemQuantity(1, 4)
	assert.Equal(t, "22.00", second.TotalPrice.String())
	assert.Equal(t, "52.00", o.TotalAmount.String())

	o.RemoveItem(0)
	assert.Equal(t, 1, o.ItemCount())
	assert.Equal(t, "22.00", o.TotalAmount.String())
}

func TestOrderItemPriceIsSnapshot(t *testing.T) {
	o := draftOrder(t)
	src := offer(1, "12.40")
	item := o.AddItem(src, 5)

	src.Price = money.MustParse("99.00")

	assert.Equal(t, "12.40", item.UnitPrice.String())
	assert.Equal(t, "62.00", item.TotalPrice.String())
	assert.Equal(t, "62.00", o.TotalAmount.String())
}

func TestOrderItemSettersKeepTotalInSync(t *testing.T) {
	item := &OrderItem{}
	item.SetUnitPrice(money.MustParse("0.33"))
	item.SetQuantity(3)
	assert.Equal(t, "0.99", item.TotalPrice.String())

	item.SetUnitPrice(money.MustParse("1.25"))
	assert.Equal(t, "3.75", item.TotalPrice.String())
}

func TestSubmit(t *testing.T) {
	o := draftOrder(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	require.NoError(t, o.Submit(now))
	assert.Equal(t, StatusSubmitted, o.Status)
	require.NotNil(t, o.SubmittedAt)
	assert.Equal(t, now, *o.SubmittedAt)

	err := o.Submit(now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusSubmitted, o.Status)
	assert.Equal(t, now, *o.SubmittedAt)
}

func TestApproveAndReject(t *testing.T) {
	now := time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)
	approver := &User{ID: 7, Name: "Jana"}

	o := draftOrder(t)
	err := o.Approve(approver, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Nil(t, o.ApprovedAt)
	assert.Nil(t, o.ApprovedByID)

	require.NoError(t, o.Submit(now))
	require.NoError(t, o.Approve(approver, now))
	assert.Equal(t, StatusApproved, o.Status)
	assert.Equal(t, int64(7), *o.ApprovedByID)
	assert.Equal(t, now, *o.ApprovedAt)

	assert.ErrorIs(t, o.Reject(), ErrInvalidTransition)
	assert.Equal(t, StatusApproved, o.Status)

	rejected := draftOrder(t)
	require.NoError(t, rejected.Submit(now))
	require.NoError(t, rejected.Reject())
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Nil(t, rejected.ApprovedAt)
}

func TestTransitionsFromTerminalStates(t *testing.T) {
	now := time.Now()
	for _, status := range []OrderStatus{StatusApproved, StatusRejected, StatusOrdered, StatusDelivered, StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			o := &Order{Status: status}
			for _, err := range []error{o.Submit(now), o.Approve(&User{ID: 1}, now), o.Reject()} {
				var te *TransitionError
				require.True(t, errors.As(err, &te))
				assert.Equal(t, status, te.From)
			}
			assert.Equal(t, status, o.Status)
			assert.Nil(t, o.SubmittedAt)
			assert.Nil(t, o.ApprovedAt)
		})
	}
}

func TestShipmentDrivenTransitions(t *testing.T) {
	o := &Order{Status: StatusApproved}
	require.NoError(t, o.MarkOrdered())
	assert.Equal(t, StatusOrdered, o.Status)
	require.NoError(t, o.MarkOrdered())
	require.NoError(t, o.MarkDelivered())
	assert.Equal(t, StatusDelivered, o.Status)

	assert.ErrorIs(t, (&Order{Status: StatusDraft}).MarkOrdered(), ErrInvalidTransition)
	assert.ErrorIs(t, (&Order{Status: StatusSubmitted}).MarkDelivered(), ErrInvalidTransition)
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, p)

	p, err = ParsePriority("high")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParsePriority("urgent")
	assert.Error(t, err)
}

func TestSortPendingApproval(t *testing.T) {
	at := func(h int) *time.Time {
		v := time.Date(2026, 1, 1, h, 0, 0, 0, time.UTC)
		return &v
	}
	orders := []*Order{
		{ID: 1, Priority: PriorityLow, SubmittedAt: at(1)},
		{ID: 2, Priority: PriorityMedium, SubmittedAt: at(5)},
		{ID: 3, Priority: PriorityHigh, SubmittedAt: at(9)},
		{ID: 4, Priority: PriorityMedium, SubmittedAt: at(2)},
		{ID: 5, Priority: PriorityHigh, SubmittedAt: at(3)},
	}

	SortPendingApproval(orders)

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []int64{5, 3, 4, 2, 1}, ids)
}

func TestSupplierIDs(t *testing.T) {
	o := draftOrder(t)
	o.AddItem(offer(2, "1.00"), 1)
	o.AddItem(offer(1, "1.00"), 1)
	o.AddItem(offer(2, "1.00"), 1)
	assert.Equal(t, []int64{20, 10}, o.SupplierIDs())
}
