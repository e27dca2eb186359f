// Package catalog is the client's read cache of products and the admin
// mutations that invalidate it.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/model"
	"github.com/Skotchmaster/storefront/internal/querycache"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// ErrAdminRequired is returned without contacting the server when a
// non-admin tries to change the catalog.
var ErrAdminRequired = errors.New("admin role required")

const (
	listKey  = "products"
	pageSize = 100
)

type API interface {
	Products(ctx context.Context, opts apiclient.ListOptions) (*apiclient.ProductPage, error)
	Product(ctx context.Context, id string) (*model.Product, error)
	Search(ctx context.Context, query string, page, size int) (*apiclient.SearchResult, error)
	CreateProduct(ctx context.Context, p apiclient.NewProduct) (*model.Product, error)
	PatchProduct(ctx context.Context, id string, p apiclient.ProductPatch) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	DeleteProductImage(ctx context.Context, id, image string) (*model.Product, error)
}

// Products is a normalized product collection: entities by id plus the
// order the server listed them in.
type Products struct {
	IDs  []string
	ByID map[string]model.Product
}

func normalize(items []model.Product) Products {
	p := Products{IDs: make([]string, 0, len(items)), ByID: make(map[string]model.Product, len(items))}
	for _, it := range items {
		if _, dup := p.ByID[it.ID]; !dup {
			p.IDs = append(p.IDs, it.ID)
		}
		p.ByID[it.ID] = it
	}
	return p
}

func (p Products) All() []model.Product {
	out := make([]model.Product, 0, len(p.IDs))
	for _, id := range p.IDs {
		out = append(out, p.ByID[id])
	}
	return out
}

// ByCategory keeps the products whose category equals name.
func (p Products) ByCategory(name string) []model.Product {
	var out []model.Product
	for _, id := range p.IDs {
		if it := p.ByID[id]; it.Category == name {
			out = append(out, it)
		}
	}
	return out
}

// Categories lists the distinct categories in listing order.
func (p Products) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, id := range p.IDs {
		c := p.ByID[id].Category
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func (p Products) tags() []querycache.Tag {
	tags := make([]querycache.Tag, 0, len(p.IDs)+1)
	tags = append(tags, querycache.ProductList())
	for _, id := range p.IDs {
		tags = append(tags, querycache.Product(id))
	}
	return tags
}

type Catalog struct {
	api   API
	cache *querycache.Cache
	user  func() *model.User
}

// New builds a catalog. user reports the current user and may return nil.
func New(api API, cache *querycache.Cache, user func() *model.User) *Catalog {
	return &Catalog{api: api, cache: cache, user: user}
}

func (c *Catalog) List(ctx context.Context) (Products, error) {
	return querycache.QueryTags(ctx, c.cache, listKey, Products.tags, c.fetchAll)
}

func (c *Catalog) fetchAll(ctx context.Context) (Products, error) {
	var items []model.Product
	for page := 1; ; page++ {
		res, err := c.api.Products(ctx, apiclient.ListOptions{Page: page, Size: pageSize})
		if err != nil {
			return Products{}, err
		}
		items = append(items, res.Data...)
		if len(res.Data) == 0 || int64(len(items)) >= res.Meta.Total {
			break
		}
	}
	return normalize(items), nil
}

// Get answers from a fresh list when it holds id and fetches the detail
// otherwise.
func (c *Catalog) Get(ctx context.Context, id string) (model.Product, error) {
	if list, ok := querycache.PeekFresh[Products](c.cache, listKey); ok {
		if p, ok := list.ByID[id]; ok {
			return p, nil
		}
	}
	return querycache.Query(ctx, c.cache, "product/"+id, []querycache.Tag{querycache.Product(id)},
		func(ctx context.Context) (model.Product, error) {
			p, err := c.api.Product(ctx, id)
			if err != nil {
				return model.Product{}, err
			}
			return *p, nil
		})
}

func (c *Catalog) Search(ctx context.Context, q string) ([]model.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("empty search query: %w", apiclient.ErrValidation)
	}
	key := "search?q=" + url.QueryEscape(q)
	return querycache.Query(ctx, c.cache, key, []querycache.Tag{querycache.ProductList()},
		func(ctx context.Context) ([]model.Product, error) {
			res, err := c.api.Search(ctx, q, 1, pageSize)
			if err != nil {
				return nil, err
			}
			return res.Products, nil
		})
}

func (c *Catalog) requireAdmin() error {
	if u := c.user(); !u.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

func (c *Catalog) Create(ctx context.Context, p apiclient.NewProduct) (model.Product, error) {
	if err := c.requireAdmin(); err != nil {
		return model.Product{}, err
	}
	created, err := c.api.CreateProduct(ctx, p)
	if err != nil {
		return model.Product{}, err
	}
	c.invalidated(ctx, querycache.AddProduct, created.ID)
	return *created, nil
}

func (c *Catalog) Update(ctx context.Context, id string, patch apiclient.ProductPatch) (model.Product, error) {
	if err := c.requireAdmin(); err != nil {
		return model.Product{}, err
	}
	updated, err := c.api.PatchProduct(ctx, id, patch)
	if err != nil {
		return model.Product{}, err
	}
	c.invalidated(ctx, querycache.UpdateProduct, id)
	return *updated, nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}
	if err := c.api.DeleteProduct(ctx, id); err != nil {
		return err
	}
	c.invalidated(ctx, querycache.DeleteProduct, id)
	return nil
}

func (c *Catalog) DeleteImage(ctx context.Context, id, image string) (model.Product, error) {
	if err := c.requireAdmin(); err != nil {
		return model.Product{}, err
	}
	updated, err := c.api.DeleteProductImage(ctx, id, image)
	if err != nil {
		return model.Product{}, err
	}
	c.invalidated(ctx, querycache.DeleteProductImage, id)
	return *updated, nil
}

func (c *Catalog) invalidated(ctx context.Context, m querycache.Mutation, id string) {
	keys := c.cache.After(m, id)
	logging.FromContext(ctx).Debug("catalog_invalidated", "mutation", string(m), "id", id, "keys", keys)
}
