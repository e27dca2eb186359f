package catalog

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/model"
	"github.com/Skotchmaster/storefront/internal/querycache"
	"github.com/Skotchmaster/storefront/services/shop/shoptest"
)

type fakeAPI struct {
	API
	products []model.Product
	lists    atomic.Int64
	details  atomic.Int64
	patches  atomic.Int64
}

func (f *fakeAPI) Products(_ context.Context, opts apiclient.ListOptions) (*apiclient.ProductPage, error) {
	f.lists.Add(1)
	start := (opts.Page - 1) * opts.Size
	end := min(start+opts.Size, len(f.products))
	page := &apiclient.ProductPage{}
	if start < len(f.products) {
		page.Data = f.products[start:end]
	}
	page.Meta.Total = int64(len(f.products))
	return page, nil
}

func (f *fakeAPI) Product(_ context.Context, id string) (*model.Product, error) {
	f.details.Add(1)
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, &apiclient.Error{Kind: apiclient.ErrNotFound, Status: 404}
}

func (f *fakeAPI) PatchProduct(_ context.Context, id string, patch apiclient.ProductPatch) (*model.Product, error) {
	f.patches.Add(1)
	for i := range f.products {
		if f.products[i].ID == id {
			if patch.Name != nil {
				f.products[i].Name = *patch.Name
			}
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, &apiclient.Error{Kind: apiclient.ErrNotFound, Status: 404}
}

func seedProducts(n int) []model.Product {
	out := make([]model.Product, 0, n)
	for i := 0; i < n; i++ {
		cat := "even"
		if i%2 == 1 {
			cat = "odd"
		}
		out = append(out, model.Product{ID: fmt.Sprintf("p%03d", i), Name: fmt.Sprintf("item %d", i), Category: cat})
	}
	return out
}

func admin() *model.User    { return &model.User{ID: "a", Role: model.RoleAdmin} }
func customer() *model.User { return &model.User{ID: "c", Role: model.RoleCustomer} }

func TestList_PagesAndNormalizes(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{products: seedProducts(230)}
	c := New(api, querycache.New(), customer)

	list, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list.IDs, 230)
	assert.Len(t, list.ByID, 230)
	assert.EqualValues(t, 3, api.lists.Load())
	assert.Equal(t, "p000", list.IDs[0])
	assert.Len(t, list.ByCategory("odd"), 115)
	assert.Equal(t, []string{"even", "odd"}, list.Categories())
}

func TestGet_ServedFromFreshList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &fakeAPI{products: seedProducts(3)}
	c := New(api, querycache.New(), customer)

	_, err := c.List(ctx)
	require.NoError(t, err)

	p, err := c.Get(ctx, "p001")
	require.NoError(t, err)
	assert.Equal(t, "item 1", p.Name)
	assert.Zero(t, api.details.Load())

	_, err = c.Get(ctx, "nope")
	assert.ErrorIs(t, err, apiclient.ErrNotFound)
	assert.EqualValues(t, 1, api.details.Load())
}

func TestUpdate_InvalidatesListAndDetail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &fakeAPI{products: seedProducts(3)}
	c := New(api, querycache.New(), admin)

	_, err := c.List(ctx)
	require.NoError(t, err)

	name := "renamed"
	_, err = c.Update(ctx, "p002", apiclient.ProductPatch{Name: &name})
	require.NoError(t, err)

	p, err := c.Get(ctx, "p002")
	require.NoError(t, err)
	assert.Equal(t, "renamed", p.Name)

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "renamed", list.ByID["p002"].Name)
	assert.EqualValues(t, 2, api.lists.Load())
}

func TestAdminGuard_NoRequest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &fakeAPI{products: seedProducts(1)}

	for name, user := range map[string]func() *model.User{
		"customer":  customer,
		"anonymous": func() *model.User { return nil },
	} {
		t.Run(name, func(t *testing.T) {
			c := New(api, querycache.New(), user)
			n := "x"
			_, err := c.Update(ctx, "p000", apiclient.ProductPatch{Name: &n})
			assert.ErrorIs(t, err, ErrAdminRequired)
			assert.ErrorIs(t, c.Delete(ctx, "p000"), ErrAdminRequired)
			_, err = c.Create(ctx, apiclient.NewProduct{Name: "x"})
			assert.ErrorIs(t, err, ErrAdminRequired)
		})
	}
	assert.Zero(t, api.patches.Load())
}

func TestCatalog_AgainstBackend(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := shoptest.New(t)
	tea := s.SeedProduct(t, "green tea", "4.50", "drinks")
	s.SeedProduct(t, "mug", "9.99", "kitchen")

	client := apiclient.New(s.URL)
	client.SetCredentials(adminCreds(s.AdminToken(t)))
	c := New(client, querycache.New(), admin)

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list.IDs, 2)

	found, err := c.Search(ctx, "tea")
	require.NoError(t, err)
	require.NotEmpty(t, found)
	assert.Equal(t, tea.ID.String(), found[0].ID)

	created, err := c.Create(ctx, apiclient.NewProduct{
		Name:     "cookies",
		Category: "snacks",
		Price:    decimal.RequireFromString("2.25"),
		Stock:    5,
		Images:   []string{"https://img.test/a.png", "https://img.test/b.png"},
	})
	require.NoError(t, err)

	list, err = c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list.IDs, 3)

	p, err := c.DeleteImage(ctx, created.ID, "https://img.test/a.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img.test/b.png"}, p.Images)

	require.NoError(t, c.Delete(ctx, created.ID))
	list, err = c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list.IDs, 2)

	_, err = c.Get(ctx, created.ID)
	assert.ErrorIs(t, err, apiclient.ErrNotFound)
}

type adminCreds string

func (a adminCreds) AccessToken() string { return string(a) }
func (a adminCreds) GuestID() string     { return "" }
