package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/internal/repo"
	"github.com/Skotchmaster/bakery/pkg/apperr"
	"github.com/Skotchmaster/bakery/pkg/logging"
	"github.com/Skotchmaster/bakery/pkg/pagination"
)

// Searcher is the product search index. *search.Client implements it.
type Searcher interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []uint, error)
}

type CatalogService struct {
	Repo *repo.GormRepo
	// Search is optional; without it free-text queries use SQL LIKE.
	Search Searcher
	Tasks  Spawner
}

type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	Category    *string
	ImageURL    *string
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Error("get_product_error", "status", 500, "product_id", id, "error", err)
		return nil, apperr.Query(err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// List pages through the catalog. A free-text query is resolved by the search
// index when one is configured; its hits then go through the same SQL filters,
// sorting and paging as a plain listing.
func (s *CatalogService) List(ctx context.Context, q models.ProductQuery) (pagination.Page[models.Product], error) {
	l := logging.FromContext(ctx).With("svc", "catalog.list")

	if q.Search = strings.TrimSpace(q.Search); q.Search != "" && s.Search != nil {
		_, ids, err := s.Search.Search(ctx, q.Search, 0, pagination.MaxLimit)
		if err != nil {
			l.Warn("product_search_fallback", "reason", "search index unavailable", "error", err)
		} else {
			if ids == nil {
				ids = []uint{}
			}
			q.IDs = ids
		}
	}

	items, total, err := s.Repo.ListProducts(ctx, q)
	if err != nil {
		l.Error("list_products_error", "status", 500, "error", err)
		return pagination.Page[models.Product]{}, apperr.Query(err)
	}
	return pagination.New(items, q.Page, q.Limit, total), nil
}

func validateProduct(p *models.Product) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return apperr.ErrValidation.Msg("name is required")
	case p.Price.IsNegative():
		return apperr.ErrValidation.Msg("price cannot be negative")
	case p.Stock < 0:
		return apperr.ErrValidation.Msg("stock cannot be negative")
	}
	return nil
}

func (s *CatalogService) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create")
	if err := validateProduct(p); err != nil {
		l.Warn("create_product_error", "status", 400, "reason", err.Error())
		return nil, err
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		l.Error("create_product_error", "status", 500, "error", err)
		return nil, apperr.Query(err)
	}
	l.Info("create_product_success", "product_id", p.ID)
	s.reindex(ctx, p)
	return p, nil
}

func (s *CatalogService) Update(ctx context.Context, id uint, patch ProductPatch) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update", "product_id", id)

	updates := map[string]any{}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, apperr.ErrValidation.Msg("name cannot be empty")
		}
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, apperr.ErrValidation.Msg("price cannot be negative")
		}
		updates["price"] = *patch.Price
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return nil, apperr.ErrValidation.Msg("stock cannot be negative")
		}
		updates["stock"] = *patch.Stock
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}

	p, err := s.Repo.UpdateProduct(ctx, id, updates)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		l.Warn("update_product_error", "status", 404, "reason", "product not found")
		return nil, ErrProductNotFound
	}
	if err != nil {
		l.Error("update_product_error", "status", 500, "error", err)
		return nil, apperr.Query(err)
	}
	l.Info("update_product_success", "fields", len(updates))
	s.reindex(ctx, p)
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete", "product_id", id)
	err := s.Repo.DeleteProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		l.Warn("delete_product_error", "status", 404, "reason", "product not found")
		return ErrProductNotFound
	}
	if err != nil {
		l.Error("delete_product_error", "status", 500, "error", err)
		return apperr.Query(err)
	}
	l.Info("delete_product_success")

	if s.Search != nil && s.Tasks != nil {
		s.Tasks.Go(ctx, "search_delete_product", func(ctx context.Context) error {
			return s.Search.DeleteProduct(ctx, id)
		})
	}
	return nil
}

func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if s.Search == nil || s.Tasks == nil {
		return
	}
	doc := *p
	s.Tasks.Go(ctx, "search_index_product", func(ctx context.Context) error {
		return s.Search.IndexProduct(ctx, &doc)
	})
}
