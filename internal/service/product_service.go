package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/orderdesk/order-service/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, skip, limit int) ([]*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
}

// ProductService is plain catalog CRUD. No workflow logic lives here.
type ProductService struct {
	products ProductRepository
	log      *logrus.Logger
}

func NewProductService(products ProductRepository, log *logrus.Logger) *ProductService {
	return &ProductService{products: products, log: log}
}

func (s *ProductService) CreateProduct(ctx context.Context, draft domain.ProductDraft) (*domain.Product, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	// UUID collisions are negligible, but the insert-retry discipline is
	// kept anyway; a conflict just means a fresh id.
	product := domain.NewProduct(domain.GenerateProductID(), draft)
	for attempt := 1; ; attempt++ {
		err := s.products.Create(ctx, product)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrProductIDConflict) && attempt < 5 {
			product.ID = domain.GenerateProductID()
			continue
		}
		return nil, &domain.PersistenceError{Op: "create product", Err: err}
	}

	s.log.WithField("product_id", product.ID).Info("product created")
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "fetch product", Err: err}
	}
	if product == nil {
		return nil, &domain.NotFoundError{Resource: "product", ID: id}
	}
	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, skip, limit int) ([]*domain.Product, error) {
	products, err := s.products.List(ctx, skip, limit)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list products", Err: err}
	}
	return products, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, update domain.ProductUpdate) (*domain.Product, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Apply(update)
	if err := s.products.Update(ctx, product); err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}
		return nil, &domain.PersistenceError{Op: "update product", Err: err}
	}
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return err
		}
		return &domain.PersistenceError{Op: "delete product", Err: err}
	}
	return nil
}
