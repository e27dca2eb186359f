package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/services/shop/internal/models"
)

const DefaultIndex = "products"

// Index keeps a product search index in sync and answers free-text queries.
type Index interface {
	Search(ctx context.Context, q string, from, size int) (int64, []models.Product, error)
	Put(ctx context.Context, p *models.Product) error
	Remove(ctx context.Context, id uuid.UUID) error
}

type ElasticIndex struct {
	ES    *elasticsearch.Client
	Index string
}

type ElasticConfig struct {
	URL      string
	Username string
	Password string
	Index    string
}

func NewElastic(ctx context.Context, cfg ElasticConfig) (*ElasticIndex, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}

	index := cfg.Index
	if index == "" {
		index = DefaultIndex
	}
	return &ElasticIndex{ES: client, Index: index}, nil
}

func (e *ElasticIndex) Search(ctx context.Context, q string, from, size int) (int64, []models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^2", "description", "category"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := e.ES.Search(
		e.ES.Search.WithContext(ctx),
		e.ES.Search.WithIndex(e.Index),
		e.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}

func (e *ElasticIndex) Put(ctx context.Context, p *models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}
	res, err := e.ES.Index(
		e.Index,
		bytes.NewReader(data),
		e.ES.Index.WithDocumentID(p.ID.String()),
		e.ES.Index.WithContext(ctx),
		e.ES.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index product: %s", res.Status())
	}
	return nil
}

func (e *ElasticIndex) Remove(ctx context.Context, id uuid.UUID) error {
	res, err := e.ES.Delete(e.Index, id.String(), e.ES.Delete.WithContext(ctx), e.ES.Delete.WithRefresh("true"))
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete product: %s", res.Status())
	}
	return nil
}

// SQLSearcher is what the SQL fallback needs from the repository.
type SQLSearcher interface {
	SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error)
}

// SQLIndex answers queries straight from the database; Put and Remove are
// no-ops since the table is the index.
type SQLIndex struct {
	Repo SQLSearcher
}

func (s SQLIndex) Search(ctx context.Context, q string, from, size int) (int64, []models.Product, error) {
	return s.Repo.SearchProducts(ctx, strings.TrimSpace(q), from, size)
}

func (SQLIndex) Put(context.Context, *models.Product) error { return nil }
func (SQLIndex) Remove(context.Context, uuid.UUID) error    { return nil }
