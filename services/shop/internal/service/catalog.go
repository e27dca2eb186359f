package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/shop/internal/events"
	"github.com/Skotchmaster/storefront/services/shop/internal/models"
	"github.com/Skotchmaster/storefront/services/shop/internal/repo"
	"github.com/Skotchmaster/storefront/services/shop/internal/search"
	"github.com/Skotchmaster/storefront/services/shop/internal/transport"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Index  search.Index
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if notFound(err) {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return p, err
}

func (s *CatalogService) ListProducts(ctx context.Context, category string, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.GetProducts(ctx, strings.TrimSpace(category), offset, limit)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("price cannot be negative: %w", ErrValidation)
	}

	images := req.Images
	if images == nil {
		images = []string{}
	}
	p := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    strings.TrimSpace(req.Category),
		Price:       req.Price.Round(2),
		Stock:       req.Stock,
		Images:      images,
	}
	if p.Name == "" {
		return nil, fmt.Errorf("name required: %w", ErrValidation)
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, "product_created", p)
	return p, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("price cannot be negative: %w", ErrValidation)
		}
		rounded := req.Price.Round(2)
		req.Price = &rounded
	}

	p, err := s.Repo.PatchProduct(ctx, req, id)
	if notFound(err) {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, "product_updated", p)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete")

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if notFound(err) {
			return fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return err
	}

	if err := s.Index.Remove(ctx, id); err != nil {
		l.Warn("index_remove_error", "product_id", id, "error", err)
	}
	if err := s.Events.Publish(ctx, events.TopicProduct, id.String(), events.ProductEvent{
		Type:      "product_deleted",
		ProductID: id.String(),
	}); err != nil {
		l.Warn("publish_error", "topic", events.TopicProduct, "error", err)
	}
	return nil
}

func (s *CatalogService) DeleteImage(ctx context.Context, id uuid.UUID, image string) (*models.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	idx := slices.Index(p.Images, image)
	if idx < 0 {
		return nil, fmt.Errorf("image %q: %w", image, ErrNotFound)
	}
	images := slices.Delete(slices.Clone(p.Images), idx, idx+1)
	return s.PatchProduct(ctx, id, transport.PatchProductRequest{Images: &images})
}

func (s *CatalogService) Search(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, fmt.Errorf("query required: %w", ErrValidation)
	}
	return s.Index.Search(ctx, q, offset, limit)
}

func (s *CatalogService) afterWrite(ctx context.Context, eventType string, p *models.Product) {
	l := logging.FromContext(ctx).With("svc", "catalog."+eventType)

	if err := s.Index.Put(ctx, p); err != nil {
		l.Warn("index_put_error", "product_id", p.ID, "error", err)
	}
	if err := s.Events.Publish(ctx, events.TopicProduct, p.ID.String(), events.ProductEvent{
		Type:      eventType,
		ProductID: p.ID.String(),
		Name:      p.Name,
		Price:     p.Price.StringFixed(2),
	}); err != nil {
		l.Warn("publish_error", "topic", events.TopicProduct, "error", err)
	}
}
