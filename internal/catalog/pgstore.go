package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"cosmos-catalog/internal/idgen"
)

const productColumns = `id, name, category, description, price, old_price, stock, rating, image`

// PGStore keeps the catalog in Postgres. It applies the same validation as a
// Collection built WithValidation, and orders records by insertion.
type PGStore struct {
	db     *sql.DB
	schema string
	table  string
	ids    idgen.Generator
}

// NewPGStore uses the products table inside schema.
func NewPGStore(db *sql.DB, schema string) *PGStore {
	if schema == "" {
		schema = "catalog"
	}
	return &PGStore{
		db:     db,
		schema: schema,
		table:  pq.QuoteIdentifier(schema) + ".products",
		ids:    idgen.UUID(),
	}
}

// Migrate creates the schema and table when missing.
func (s *PGStore) Migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE SCHEMA IF NOT EXISTS " + pq.QuoteIdentifier(s.schema),
		`CREATE TABLE IF NOT EXISTS ` + s.table + ` (
			seq         BIGSERIAL UNIQUE,
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			category    TEXT NOT NULL,
			description TEXT NOT NULL,
			price       DOUBLE PRECISION NOT NULL,
			old_price   DOUBLE PRECISION,
			stock       INTEGER NOT NULL,
			rating      DOUBLE PRECISION NOT NULL DEFAULT 0,
			image       TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("Migrate: %w", err)
		}
	}
	return nil
}

// SeedIfEmpty inserts products when the table has no rows.
func (s *PGStore) SeedIfEmpty(ctx context.Context, products []Product) error {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+s.table).Scan(&n); err != nil {
		return fmt.Errorf("SeedIfEmpty count: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, p := range products {
		if _, err := s.Create(ctx, InputFromProduct(p)); err != nil {
			return fmt.Errorf("SeedIfEmpty %q: %w", p.Name, err)
		}
	}
	return nil
}

// Ping checks the database connection.
func (s *PGStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	var oldPrice sql.NullFloat64
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Description, &p.Price,
		&oldPrice, &p.Stock, &p.Rating, &p.Image)
	if err != nil {
		return Product{}, err
	}
	if oldPrice.Valid {
		p.OldPrice = &oldPrice.Float64
	}
	return p, nil
}

func (s *PGStore) List(ctx context.Context) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+productColumns+" FROM "+s.table+" ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("List query: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("List scan: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *PGStore) Get(ctx context.Context, id string) (*Product, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM "+s.table+" WHERE id = $1", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get query: %w", err)
	}
	return &p, nil
}

func (s *PGStore) Create(ctx context.Context, in ProductInput) (*Product, error) {
	p, err := normalizeCreate(in)
	if err != nil {
		return nil, err
	}
	p.ID = s.ids.NewID()

	query := `INSERT INTO ` + s.table + ` (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + productColumns
	row := s.db.QueryRowContext(ctx, query,
		p.ID, p.Name, p.Category, p.Description, p.Price, p.OldPrice, p.Stock, p.Rating, p.Image)
	created, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	return &created, nil
}

// Update builds an UPDATE over the present fields only. An empty input reads
// the current row.
func (s *PGStore) Update(ctx context.Context, id string, in ProductInput) (*Product, error) {
	current, err := s.Get(ctx, id)
	if err != nil || current == nil {
		return nil, err
	}
	if in, err = normalizeUpdate(in); err != nil {
		return nil, err
	}
	if in.IsEmpty() {
		return current, nil
	}

	var sets []string
	var args []any
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if in.Name != nil {
		add("name", *in.Name)
	}
	if in.Category != nil {
		add("category", *in.Category)
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.Price != nil {
		add("price", *in.Price)
	}
	if in.OldPrice != nil {
		add("old_price", in.OldPrice.Value)
	}
	if in.Stock != nil {
		add("stock", *in.Stock)
	}
	if in.Rating != nil {
		add("rating", *in.Rating)
	}
	if in.Image != nil {
		add("image", *in.Image)
	}

	query := "UPDATE " + s.table + " SET "
	for i, set := range sets {
		if i > 0 {
			query += ", "
		}
		query += set
	}
	args = append(args, id)
	query += fmt.Sprintf(" WHERE id = $%d RETURNING %s", len(args), productColumns)

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	return &p, nil
}

func (s *PGStore) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM "+s.table+" WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("Delete: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Delete rows affected: %w", err)
	}
	return rows > 0, nil
}
