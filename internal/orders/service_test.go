package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore implements OrderStore in memory with the same zero-row semantics
// as the pg repo.
type memStore struct {
	orders map[string]Order
}

func newMemStore() *memStore { return &memStore{orders: map[string]Order{}} }

func (m *memStore) Insert(_ context.Context, o *Order) error {
	m.orders[o.ID] = *o
	return nil
}

func (m *memStore) Replace(_ context.Context, o *Order) error {
	cur, ok := m.orders[o.ID]
	if !ok {
		return ErrOrderNotFound
	}
	o.CreatedAt = cur.CreatedAt
	o.UpdatedAt = time.Now().UTC()
	m.orders[o.ID] = *o
	return nil
}

func (m *memStore) Patch(_ context.Context, id string, p StorePatch) (*Order, error) {
	cur, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	if p.UserID != nil {
		cur.UserID = *p.UserID
	}
	if p.ProductIDs != nil {
		cur.ProductIDs = p.ProductIDs
		cur.Total = *p.Total
	}
	if p.Payment != nil {
		cur.Payment = *p.Payment
	}
	cur.UpdatedAt = time.Now().UTC()
	m.orders[id] = cur
	return &cur, nil
}

func (m *memStore) Delete(_ context.Context, id string) (*Order, error) {
	cur, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	delete(m.orders, id)
	return &cur, nil
}

func (m *memStore) Get(_ context.Context, id string) (*Order, error) {
	cur, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &cur, nil
}

func (m *memStore) List(_ context.Context) ([]Order, error) {
	out := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

// recordingNotifier captures emitted events in order.
type recordingNotifier struct {
	events []string
	last   Order
	prior  Order
}

func (n *recordingNotifier) OrderCreated(o Order) {
	n.events = append(n.events, "created")
	n.last = o
}
func (n *recordingNotifier) OrderUpdated(o Order) {
	n.events = append(n.events, "updated")
	n.last = o
}
func (n *recordingNotifier) OrderDeleted(_ string, prior Order) {
	n.events = append(n.events, "deleted")
	n.prior = prior
}

func newTestService() (*Service, *memStore, *recordingNotifier) {
	store := newMemStore()
	notify := &recordingNotifier{}
	svc := NewService(store, newFakeCatalog(), notify, d("0.20"))
	return svc, store, notify
}

func TestCreateDerivesTotal(t *testing.T) {
	svc, store, notify := newTestService()

	o, err := svc.Create(context.Background(), CreateInput{
		UserID:     "U1",
		ProductIDs: []string{"P1", "P2", "P1"},
	})
	require.NoError(t, err)

	assert.True(t, o.Total.Equal(d("30.00")), "total %s", o.Total)
	assert.False(t, o.Payment)
	assert.Equal(t, o.CreatedAt, o.UpdatedAt)
	assert.Contains(t, store.orders, o.ID)
	assert.Equal(t, []string{"created"}, notify.events)
	assert.Equal(t, o.ID, notify.last.ID)
}

func TestCreateUnknownProductCreatesNothing(t *testing.T) {
	svc, store, notify := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{
		UserID:     "U1",
		ProductIDs: []string{"P1", "GHOST"},
	})
	var pnf *ProductNotFoundError
	require.ErrorAs(t, err, &pnf)
	assert.Empty(t, store.orders)
	assert.Empty(t, notify.events)
}

func TestCreateUnknownUserCreatesNothing(t *testing.T) {
	svc, store, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{
		UserID:     "UNKNOWN",
		ProductIDs: []string{"P1"},
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, store.orders)
}

func TestCreateEmptyProductListTotalZero(t *testing.T) {
	svc, _, _ := newTestService()

	o, err := svc.Create(context.Background(), CreateInput{
		UserID:     "U1",
		ProductIDs: []string{},
	})
	require.NoError(t, err)
	assert.True(t, o.Total.IsZero())
}

func TestReplaceRefreshesUpdatedAtOnly(t *testing.T) {
	svc, _, notify := newTestService()

	created, err := svc.Create(context.Background(), CreateInput{UserID: "U1", ProductIDs: []string{"P1"}})
	require.NoError(t, err)

	replaced, err := svc.Replace(context.Background(), created.ID, CreateInput{
		UserID:     "U1",
		ProductIDs: []string{"P2"},
		Payment:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, created.CreatedAt, replaced.CreatedAt)
	assert.True(t, replaced.UpdatedAt.After(replaced.CreatedAt) || replaced.UpdatedAt.Equal(replaced.CreatedAt))
	assert.True(t, replaced.Total.Equal(d("6.00")), "total %s", replaced.Total)
	assert.True(t, replaced.Payment)
	assert.Equal(t, []string{"created", "updated"}, notify.events)
}

func TestReplaceMissingOrder(t *testing.T) {
	svc, _, notify := newTestService()

	_, err := svc.Replace(context.Background(), "nope", CreateInput{UserID: "U1", ProductIDs: []string{"P1"}})
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Empty(t, notify.events)
}

func TestPatchEmptyRejected(t *testing.T) {
	svc, store, notify := newTestService()

	created, err := svc.Create(context.Background(), CreateInput{UserID: "U1", ProductIDs: []string{"P1"}})
	require.NoError(t, err)
	notify.events = nil

	_, err = svc.Patch(context.Background(), created.ID, PatchInput{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)

	// record untouched
	assert.Equal(t, *created, store.orders[created.ID])
	assert.Empty(t, notify.events)
}

func TestPatchPaymentOnlyKeepsTotal(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.Create(context.Background(), CreateInput{UserID: "U1", ProductIDs: []string{"P1", "P2"}})
	require.NoError(t, err)

	paid := true
	patched, err := svc.Patch(context.Background(), created.ID, PatchInput{Payment: &paid})
	require.NoError(t, err)

	assert.True(t, patched.Payment)
	assert.True(t, patched.Total.Equal(created.Total))
	assert.Equal(t, created.ProductIDs, patched.ProductIDs)
}

func TestPatchProductsRecomputesTotal(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.Create(context.Background(), CreateInput{UserID: "U1", ProductIDs: []string{"P1", "P2", "P1"}})
	require.NoError(t, err)

	patched, err := svc.Patch(context.Background(), created.ID, PatchInput{ProductIDs: []string{"P2"}})
	require.NoError(t, err)

	assert.True(t, patched.Total.Equal(d("6.00")), "total %s", patched.Total)
	assert.Equal(t, created.UserID, patched.UserID)
}

func TestPatchBadReferenceLeavesRecord(t *testing.T) {
	svc, store, _ := newTestService()

	created, err := svc.Create(context.Background(), CreateInput{UserID: "U1", ProductIDs: []string{"P1"}})
	require.NoError(t, err)

	_, err = svc.Patch(context.Background(), created.ID, PatchInput{ProductIDs: []string{"GHOST"}})
	var pnf *ProductNotFoundError
	require.ErrorAs(t, err, &pnf)
	assert.Equal(t, *created, store.orders[created.ID])
}

func TestDeleteTwice(t *testing.T) {
	svc, _, notify := newTestService()

	created, err := svc.Create(context.Background(), CreateInput{UserID: "U1", ProductIDs: []string{"P1"}})
	require.NoError(t, err)

	prior, err := svc.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, prior.ID)
	assert.Equal(t, created.ID, notify.prior.ID)

	_, err = svc.Delete(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Equal(t, []string{"created", "deleted"}, notify.events)
}

func TestGetJoinsUserAndProducts(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.Create(context.Background(), CreateInput{UserID: "U1", ProductIDs: []string{"P1", "P2", "P1"}})
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)

	require.NotNil(t, detail.User)
	assert.Equal(t, "U1", detail.User.ID)
	// products deduplicated for display
	require.Len(t, detail.Products, 2)
	assert.Equal(t, "P1", detail.Products[0].ID)
	assert.Equal(t, "P2", detail.Products[1].ID)
}
