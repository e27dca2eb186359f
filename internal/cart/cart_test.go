package cart

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/model"
	"github.com/Skotchmaster/storefront/internal/querycache"
	"github.com/Skotchmaster/storefront/internal/store"
	"github.com/Skotchmaster/storefront/services/shop/shoptest"
)

type guestEnv struct {
	srv   *shoptest.Server
	sync  *Synchronizer
	store *store.Store
	cache *querycache.Cache
	guest string
}

func newGuestEnv(t *testing.T) *guestEnv {
	t.Helper()
	srv := shoptest.New(t)
	guest := uuid.NewString()
	st := store.New(store.State{Cart: store.CartState{GuestID: guest}}, nil)

	client := apiclient.New(srv.URL)
	client.SetCredentials(st)
	cache := querycache.New()
	return &guestEnv{
		srv:   srv,
		sync:  New(client, cache, st, decimal.RequireFromString("0.10")),
		store: st,
		cache: cache,
		guest: guest,
	}
}

func (e *guestEnv) serverQuantities(t *testing.T) map[string]int {
	t.Helper()
	out := map[string]int{}
	for id, q := range e.srv.CartQuantities(t, shoptest.GuestOwner(e.guest)) {
		out[id.String()] = q
	}
	return out
}

func (e *guestEnv) localQuantities() map[string]int {
	out := map[string]int{}
	for _, l := range e.store.State().Cart.Lines {
		out[l.Product.ID] = l.Quantity
	}
	return out
}

func TestSynchronizer_IncreaseThenRemove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newGuestEnv(t)
	a := env.srv.SeedProduct(t, "A", "3.00", "misc").ID.String()

	c, err := env.sync.Add(ctx, a, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Quantity(a))

	c, err = env.sync.Increase(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Quantity(a))
	assert.Equal(t, env.serverQuantities(t), env.localQuantities())

	c, err = env.sync.Remove(ctx, a)
	require.NoError(t, err)
	assert.True(t, c.Empty())
	assert.Empty(t, env.store.State().Cart.Lines)
	assert.Empty(t, env.serverQuantities(t))
}

func TestSynchronizer_AddExistingIncrements(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newGuestEnv(t)
	a := env.srv.SeedProduct(t, "A", "1.00", "misc").ID.String()

	_, err := env.sync.Add(ctx, a, 1)
	require.NoError(t, err)
	c, err := env.sync.Add(ctx, a, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Quantity(a))
	assert.Len(t, c.Products, 1)
}

func TestSynchronizer_DecreaseToZeroDropsLine(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newGuestEnv(t)
	a := env.srv.SeedProduct(t, "A", "1.00", "misc").ID.String()
	b := env.srv.SeedProduct(t, "B", "2.00", "misc").ID.String()

	_, err := env.sync.Add(ctx, a, 2)
	require.NoError(t, err)
	_, err = env.sync.Add(ctx, b, 1)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = env.sync.Decrease(ctx, a)
		require.NoError(t, err)
	}

	c, err := env.sync.Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, c.Quantity(a))
	for _, l := range c.Products {
		assert.GreaterOrEqual(t, l.Quantity, 1)
	}
	assert.Equal(t, map[string]int{b: 1}, env.serverQuantities(t))

	_, err = env.sync.Decrease(ctx, a)
	assert.ErrorIs(t, err, apiclient.ErrNotFound)
}

func TestSynchronizer_FailureLeavesState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newGuestEnv(t)
	a := env.srv.SeedProduct(t, "A", "1.00", "misc").ID.String()

	_, err := env.sync.Add(ctx, a, 1)
	require.NoError(t, err)
	before := env.store.State()
	hits := env.srv.Requests()

	_, err = env.sync.Add(ctx, uuid.NewString(), 1)
	assert.ErrorIs(t, err, apiclient.ErrNotFound)
	assert.Equal(t, before, env.store.State())
	assert.False(t, env.cache.Stale(cacheKey))
	assert.Equal(t, hits+1, env.srv.Requests())

	_, err = env.sync.Add(ctx, a, 0)
	assert.ErrorIs(t, err, apiclient.ErrValidation)
}

type flakyReads struct {
	API
	fail atomic.Bool
}

var errReadDown = errors.New("cart read unavailable")

func (f *flakyReads) Cart(ctx context.Context) (*model.Cart, error) {
	if f.fail.Load() {
		return nil, errReadDown
	}
	return f.API.Cart(ctx)
}

func TestSynchronizer_AppliedMutationWithFailedReload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newGuestEnv(t)
	a := env.srv.SeedProduct(t, "A", "1.00", "misc").ID.String()

	api := &flakyReads{API: env.sync.api}
	syn := New(api, env.cache, env.store, decimal.Zero)
	api.fail.Store(true)

	_, err := syn.Add(ctx, a, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.ErrorIs(t, err, errReadDown)
	assert.Equal(t, map[string]int{a: 2}, env.serverQuantities(t))
	assert.True(t, env.cache.Stale(cacheKey))

	api.fail.Store(false)
	c, err := syn.Get(ctx)
	require.NoError(t, err)
	require.Len(t, c.Products, 1)
	assert.Equal(t, map[string]int{a: 2}, env.localQuantities())
}

func TestSynchronizer_GetIsCachedUntilMutation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newGuestEnv(t)
	a := env.srv.SeedProduct(t, "A", "1.00", "misc").ID.String()

	_, err := env.sync.Get(ctx)
	require.NoError(t, err)
	hits := env.srv.Requests()
	_, err = env.sync.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, hits, env.srv.Requests())

	_, err = env.sync.Add(ctx, a, 1)
	require.NoError(t, err)
	// mutation plus the refetch
	assert.Equal(t, hits+2, env.srv.Requests())
}

func TestSynchronizer_ClearAndTotals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newGuestEnv(t)
	a := env.srv.SeedProduct(t, "A", "10.00", "misc").ID.String()
	b := env.srv.SeedProduct(t, "B", "2.50", "misc").ID.String()

	_, err := env.sync.Add(ctx, a, 2)
	require.NoError(t, err)
	_, err = env.sync.Add(ctx, b, 2)
	require.NoError(t, err)

	tot := env.sync.Totals()
	assert.Equal(t, "25.00", tot.Subtotal.StringFixed(2))
	assert.Equal(t, "2.50", tot.Tax.StringFixed(2))
	assert.Equal(t, "27.50", tot.Total.StringFixed(2))

	c, err := env.sync.Clear(ctx)
	require.NoError(t, err)
	assert.True(t, c.Empty())
	assert.Empty(t, env.serverQuantities(t))
}
