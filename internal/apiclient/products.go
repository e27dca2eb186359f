package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/model"
)

type ProductPage struct {
	Data []model.Product `json:"data"`
	Meta struct {
		Page  int   `json:"page"`
		Size  int   `json:"size"`
		Total int64 `json:"total"`
	} `json:"meta"`
}

type SearchResult struct {
	Total    int64           `json:"total"`
	Products []model.Product `json:"products"`
}

type ListOptions struct {
	Category string
	Page     int
	Size     int
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Category != "" {
		v.Set("category", o.Category)
	}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.Size > 0 {
		v.Set("size", strconv.Itoa(o.Size))
	}
	return v
}

type NewProduct struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Images      []string        `json:"images"`
}

// ProductPatch only sends the fields that are set.
type ProductPatch struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	Images      *[]string        `json:"images,omitempty"`
}

func (c *Client) Products(ctx context.Context, opts ListOptions) (*ProductPage, error) {
	var out ProductPage
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/products", Query: opts.values()}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Product(ctx context.Context, id string) (*model.Product, error) {
	var out model.Product
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/products/" + url.PathEscape(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Search(ctx context.Context, query string, page, size int) (*SearchResult, error) {
	q := ListOptions{Page: page, Size: size}.values()
	q.Set("q", query)
	var out SearchResult
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/products/search", Query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, p NewProduct) (*model.Product, error) {
	var out model.Product
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/products", Body: p, Auth: Bearer}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PatchProduct(ctx context.Context, id string, p ProductPatch) (*model.Product, error) {
	var out model.Product
	err := c.Do(ctx, Request{Method: http.MethodPatch, Path: "/products/" + url.PathEscape(id), Body: p, Auth: Bearer}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: "/products/" + url.PathEscape(id), Auth: Bearer}, nil)
}

func (c *Client) DeleteProductImage(ctx context.Context, id, image string) (*model.Product, error) {
	var out model.Product
	err := c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/products/" + url.PathEscape(id) + "/images",
		Body:   map[string]string{"image": image},
		Auth:   Bearer,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
