package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/order-service/internal/domain"
)

type stubProductRepo struct {
	byID        map[string]*domain.Product
	createErrs  []error
	createCalls int
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{byID: map[string]*domain.Product{}}
}

func (r *stubProductRepo) Create(ctx context.Context, product *domain.Product) error {
	r.createCalls++
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return err
		}
	}
	r.byID[product.ID] = product
	return nil
}

func (r *stubProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.byID[id], nil
}

func (r *stubProductRepo) List(ctx context.Context, skip, limit int) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0, len(r.byID))
	for _, product := range r.byID {
		products = append(products, product)
	}
	return products, nil
}

func (r *stubProductRepo) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := r.byID[product.ID]; !ok {
		return &domain.NotFoundError{Resource: "product", ID: product.ID}
	}
	r.byID[product.ID] = product
	return nil
}

func (r *stubProductRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return &domain.NotFoundError{Resource: "product", ID: id}
	}
	delete(r.byID, id)
	return nil
}

func TestCreateProduct(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo, quietLogger())

	product, err := svc.CreateProduct(context.Background(), domain.ProductDraft{Name: "Widget", Price: 100})

	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)
	assert.Equal(t, "VND", product.Currency)
	assert.Equal(t, domain.ProductStatusActive, product.Status)
	assert.Contains(t, repo.byID, product.ID)
}

func TestCreateProductInvalidDraft(t *testing.T) {
	svc := NewProductService(newStubProductRepo(), quietLogger())

	_, err := svc.CreateProduct(context.Background(), domain.ProductDraft{Price: -1})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestCreateProductIDConflictRetries(t *testing.T) {
	repo := newStubProductRepo()
	repo.createErrs = []error{domain.ErrProductIDConflict}
	svc := NewProductService(repo, quietLogger())

	product, err := svc.CreateProduct(context.Background(), domain.ProductDraft{Name: "Widget", Price: 100})

	require.NoError(t, err)
	assert.Equal(t, 2, repo.createCalls)
	assert.Contains(t, repo.byID, product.ID)
}

func TestUpdateProduct(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo, quietLogger())

	product, err := svc.CreateProduct(context.Background(), domain.ProductDraft{Name: "Widget", Price: 100})
	require.NoError(t, err)

	status := domain.ProductStatusInactive
	updated, err := svc.UpdateProduct(context.Background(), product.ID, domain.ProductUpdate{Status: &status})

	require.NoError(t, err)
	assert.Equal(t, domain.ProductStatusInactive, updated.Status)
}

func TestUpdateProductNotFound(t *testing.T) {
	svc := NewProductService(newStubProductRepo(), quietLogger())

	name := "Renamed"
	_, err := svc.UpdateProduct(context.Background(), "missing", domain.ProductUpdate{Name: &name})

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDeleteProduct(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo, quietLogger())

	product, err := svc.CreateProduct(context.Background(), domain.ProductDraft{Name: "Widget", Price: 100})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(context.Background(), product.ID))
	assert.NotContains(t, repo.byID, product.ID)

	err = svc.DeleteProduct(context.Background(), product.ID)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
