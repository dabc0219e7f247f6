package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/orderdesk/order-service/internal/domain"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, currency, stock, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		product.ID,
		product.Name,
		nullString(product.Description),
		product.Price,
		product.Currency,
		product.Stock,
		product.Status,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return domain.ErrProductIDConflict
		}
		return errors.Wrap(err, "insert product")
	}
	return nil
}

// GetByID returns (nil, nil) when the product does not exist.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, currency, stock, status, created_at, updated_at
		FROM products
		WHERE id = $1`, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return product, nil
}

func (r *ProductRepository) List(ctx context.Context, skip, limit int) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, price, currency, stock, status, created_at, updated_at
		FROM products
		ORDER BY updated_at DESC
		OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, errors.Wrap(rows.Err(), "iterate product rows")
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products SET
			name = $2, description = $3, price = $4, currency = $5,
			stock = $6, status = $7, updated_at = $8
		WHERE id = $1`,
		product.ID,
		product.Name,
		nullString(product.Description),
		product.Price,
		product.Currency,
		product.Stock,
		product.Status,
		product.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "update product")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update product rows affected")
	}
	if affected == 0 {
		return &domain.NotFoundError{Resource: "product", ID: product.ID}
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete product")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete product rows affected")
	}
	if affected == 0 {
		return &domain.NotFoundError{Resource: "product", ID: id}
	}
	return nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p           domain.Product
		description sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &description, &p.Price, &p.Currency,
		&p.Stock, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, errors.Wrap(err, "scan product")
	}
	p.Description = description.String
	return &p, nil
}
