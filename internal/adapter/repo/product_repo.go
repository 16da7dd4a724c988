package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wishcdp/internal/domain"
)

// ProductRepositoryPG implements domain.ProductRepository on PostgreSQL.
type ProductRepositoryPG struct {
	pool *pgxpool.Pool
}

var _ domain.ProductRepository = (*ProductRepositoryPG)(nil)

// NewProductRepository creates a product repository backed by PostgreSQL.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepositoryPG {
	return &ProductRepositoryPG{pool: pool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// UpsertProduct writes the candidate record keyed by itemID with
// create-or-replace semantics. Optional fields that the extraction left empty
// are omitted from the statement rather than written as NULL, so a re-run
// with a sparser extraction does not erase data it never saw.
func (r *ProductRepositoryPG) UpsertProduct(ctx context.Context, itemID string, candidate domain.ExtractedProduct, imageURL string) error {
	columns := []string{"id", "title", "category"}
	values := []any{itemID, candidate.Title, string(candidate.Category)}

	optional := []struct {
		column string
		value  string
	}{
		{"description", candidate.Description},
		{"brand", candidate.Brand},
		{"image_url", imageURL},
	}
	for _, field := range optional {
		if strings.TrimSpace(field.value) != "" {
			columns = append(columns, field.column)
			values = append(values, field.value)
		}
	}

	updates := make([]string, 0, len(columns))
	for _, col := range columns[1:] {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", col, col))
	}
	updates = append(updates, "updated_at = now()")

	query, args, err := psql.Insert("products").
		Columns(columns...).
		Values(values...).
		Suffix("on conflict (id) do update set " + strings.Join(updates, ", ")).
		ToSql()
	if err != nil {
		return fmt.Errorf("build product upsert: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert product %s: %w", itemID, err)
	}
	return nil
}

// InsertPrice appends one price observation. History rows are never updated.
func (r *ProductRepositoryPG) InsertPrice(ctx context.Context, record domain.PriceRecord) error {
	query, args, err := psql.Insert("prices").
		Columns("product_id", "amount", "currency", "captured_at").
		Values(record.ProductID, record.Amount, record.Currency, sq.Expr("now()")).
		ToSql()
	if err != nil {
		return fmt.Errorf("build price insert: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert price for %s: %w", record.ProductID, err)
	}
	return nil
}

// DeleteProduct removes the product and cascades its price history and
// detailed record in one transaction. Deleting an absent product is a no-op.
func (r *ProductRepositoryPG) DeleteProduct(ctx context.Context, itemID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer tx.Rollback(ctx)

	statements := []string{
		`delete from prices where product_id = $1`,
		`delete from product_details where product_id = $1`,
		`delete from products where id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt, itemID); err != nil {
			return fmt.Errorf("delete product %s: %w", itemID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}

// UpsertDetails attaches the enrichment blob to an existing product.
func (r *ProductRepositoryPG) UpsertDetails(ctx context.Context, itemID string, details []byte) error {
	query := `
insert into product_details (product_id, details, updated_at)
values ($1, $2, now())
on conflict (product_id) do update set details = excluded.details, updated_at = now();
`
	if _, err := r.pool.Exec(ctx, query, itemID, details); err != nil {
		return fmt.Errorf("upsert details for %s: %w", itemID, err)
	}
	return nil
}

// GetProduct fetches a product by its item ID.
func (r *ProductRepositoryPG) GetProduct(ctx context.Context, itemID string) (*domain.Product, error) {
	query := `
select id, title, category, coalesce(description, ''), coalesce(brand, ''), coalesce(image_url, ''), created_at, updated_at
from products
where id = $1;
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, query, itemID).Scan(
		&p.ID,
		&p.Title,
		&p.Category,
		&p.Description,
		&p.Brand,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product %s: %w", itemID, err)
	}
	return &p, nil
}
