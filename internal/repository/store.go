package repository

import (
	"context"
	"errors"
	"fmt"

	"shoppingstore/ingest/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Store persists categories and products. SaveProducts is an all-or-nothing
// bulk upsert: the pipeline treats a flush failure as fatal and never retries
// a partial batch.
type Store interface {
	FindCategoryByName(ctx context.Context, name string) (*domain.Category, error)
	SaveCategory(ctx context.Context, category *domain.Category) error
	SaveProducts(ctx context.Context, products []*domain.Product) error
	FindProductsByCategory(ctx context.Context, category *domain.Category) ([]*domain.Product, error)
	FindAllProducts(ctx context.Context) ([]*domain.Product, error)
}

type productStore struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) Store {
	return &productStore{
		db: db,
	}
}

func (s *productStore) FindCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	query := `SELECT id, name, possible_facets FROM categories WHERE name = $1`

	category := &domain.Category{}
	err := s.db.QueryRow(ctx, query, name).Scan(&category.ID, &category.Name, &category.PossibleFacets)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingCategory, name)
		}
		return nil, fmt.Errorf("%w: find category %s: %v", domain.ErrStore, name, err)
	}

	return category, nil
}

func (s *productStore) SaveCategory(ctx context.Context, category *domain.Category) error {
	query := `
	INSERT INTO categories (name, possible_facets)
	VALUES ($1, $2)
	ON CONFLICT (name)
	DO UPDATE SET possible_facets = $2`

	if _, err := s.db.Exec(ctx, query, category.Name, category.PossibleFacets); err != nil {
		return fmt.Errorf("%w: save category %s: %v", domain.ErrStore, category.Name, err)
	}

	return nil
}

func (s *productStore) SaveProducts(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin product batch: %v", domain.ErrStore, err)
	}
	defer tx.Rollback(ctx)

	upsert := `
	INSERT INTO products (name, description, sku, image_url, price, manufacturer, quantity, featured, category_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (sku)
	DO UPDATE SET name = $1, description = $2, image_url = $4, price = $5,
		manufacturer = $6, quantity = $7, featured = $8, category_id = $9
	RETURNING id`

	// Already-persisted products are updated by primary key: maintenance passes
	// rewrite the SKU itself, so a sku-keyed upsert would insert a duplicate row
	// instead of renaming the existing one.
	update := `
	UPDATE products
	SET name = $1, description = $2, sku = $3, image_url = $4, price = $5,
		manufacturer = $6, quantity = $7, featured = $8, category_id = $9
	WHERE id = $10`

	for _, product := range products {
		if product.ID != 0 {
			if _, err := tx.Exec(ctx, update,
				product.Name,
				product.Description,
				product.SKU,
				product.ImageURL,
				product.Price.StringFixed(2),
				product.Manufacturer,
				product.Quantity,
				product.Featured,
				product.Category.ID,
				product.ID,
			); err != nil {
				return fmt.Errorf("%w: update product %s: %v", domain.ErrStore, product.SKU, err)
			}
		} else {
			err := tx.QueryRow(ctx, upsert,
				product.Name,
				product.Description,
				product.SKU,
				product.ImageURL,
				product.Price.StringFixed(2),
				product.Manufacturer,
				product.Quantity,
				product.Featured,
				product.Category.ID,
			).Scan(&product.ID)
			if err != nil {
				return fmt.Errorf("%w: upsert product %s: %v", domain.ErrStore, product.SKU, err)
			}
		}

		// Attributes are replaced wholesale to keep source order and duplicates.
		if _, err := tx.Exec(ctx, `DELETE FROM product_attributes WHERE product_id = $1`, product.ID); err != nil {
			return fmt.Errorf("%w: clear attributes for %s: %v", domain.ErrStore, product.SKU, err)
		}

		batch := &pgx.Batch{}
		for position, attribute := range product.Attributes {
			batch.Queue(
				`INSERT INTO product_attributes (product_id, position, name, value) VALUES ($1, $2, $3, $4)`,
				product.ID, position, attribute.Name, attribute.Value,
			)
		}

		if batch.Len() > 0 {
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return fmt.Errorf("%w: insert attributes for %s: %v", domain.ErrStore, product.SKU, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit product batch: %v", domain.ErrStore, err)
	}

	return nil
}

func (s *productStore) FindProductsByCategory(ctx context.Context, category *domain.Category) ([]*domain.Product, error) {
	query := `
	SELECT id, name, description, sku, image_url, price::text, manufacturer, quantity, featured
	FROM products
	WHERE category_id = $1
	ORDER BY id`

	rows, err := s.db.Query(ctx, query, category.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: find products for category %s: %v", domain.ErrStore, category.Name, err)
	}
	defer rows.Close()

	products, err := s.scanProducts(rows, category)
	if err != nil {
		return nil, err
	}

	if err := s.loadAttributes(ctx, products); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *productStore) FindAllProducts(ctx context.Context) ([]*domain.Product, error) {
	query := `
	SELECT p.id, p.name, p.description, p.sku, p.image_url, p.price::text, p.manufacturer,
		p.quantity, p.featured, c.id, c.name, c.possible_facets
	FROM products p
	JOIN categories c ON c.id = p.category_id
	ORDER BY p.id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: find all products: %v", domain.ErrStore, err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product := &domain.Product{Category: &domain.Category{}}
		var price string
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Description, &product.SKU, &product.ImageURL,
			&price, &product.Manufacturer, &product.Quantity, &product.Featured,
			&product.Category.ID, &product.Category.Name, &product.Category.PossibleFacets,
		); err != nil {
			return nil, fmt.Errorf("%w: scan product: %v", domain.ErrStore, err)
		}

		parsed, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("%w: parse price %q: %v", domain.ErrStore, price, err)
		}
		product.Price = parsed

		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate products: %v", domain.ErrStore, err)
	}

	if err := s.loadAttributes(ctx, products); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *productStore) scanProducts(rows pgx.Rows, category *domain.Category) ([]*domain.Product, error) {
	var products []*domain.Product
	for rows.Next() {
		product := &domain.Product{Category: category}
		var price string
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Description, &product.SKU, &product.ImageURL,
			&price, &product.Manufacturer, &product.Quantity, &product.Featured,
		); err != nil {
			return nil, fmt.Errorf("%w: scan product: %v", domain.ErrStore, err)
		}

		parsed, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("%w: parse price %q: %v", domain.ErrStore, price, err)
		}
		product.Price = parsed

		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate products: %v", domain.ErrStore, err)
	}
	return products, nil
}

func (s *productStore) loadAttributes(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(products))
	byID := make(map[int64]*domain.Product, len(products))
	for _, product := range products {
		ids = append(ids, product.ID)
		byID[product.ID] = product
	}

	query := `
	SELECT product_id, name, value
	FROM product_attributes
	WHERE product_id = ANY($1)
	ORDER BY product_id, position`

	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("%w: load attributes: %v", domain.ErrStore, err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		var attribute domain.ProductAttribute
		if err := rows.Scan(&productID, &attribute.Name, &attribute.Value); err != nil {
			return fmt.Errorf("%w: scan attribute: %v", domain.ErrStore, err)
		}
		if product, ok := byID[productID]; ok {
			product.Attributes = append(product.Attributes, attribute)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: iterate attributes: %v", domain.ErrStore, err)
	}

	return nil
}
