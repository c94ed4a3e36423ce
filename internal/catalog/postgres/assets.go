package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	"github.com/kozaktomas/style-genie/internal/catalog"
)

const assetColumns = `id, name, gender, tags, face_shape_match, image_url, description, created_at`

// AssetRepository stores hairstyle assets in the hair_assets table.
type AssetRepository struct {
	pool *Pool
}

var _ catalog.Store = (*AssetRepository)(nil)

func NewAssetRepository(pool *Pool) *AssetRepository {
	return &AssetRepository{pool: pool}
}

func (r *AssetRepository) Insert(ctx context.Context, a *catalog.HairstyleAsset) error {
	gender := a.Gender
	if !gender.Known() {
		gender = catalog.GenderUnisex
	}
	err := r.pool.db.QueryRowContext(ctx,
		`INSERT INTO hair_assets (name, gender, tags, face_shape_match, image_url, description)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		a.Name, string(gender), pq.Array(nonNil(a.Tags)), pq.Array(lowerAll(a.FaceShapeMatch)), a.ImageURL, a.Description,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return catalog.NewStoreError("insert", err)
	}
	a.Gender = gender
	return nil
}

func (r *AssetRepository) ExistsByNameOrURL(ctx context.Context, name, imageURL string) (bool, error) {
	var exists bool
	err := r.pool.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM hair_assets WHERE name = $1 OR image_url = $2)`,
		name, imageURL).Scan(&exists)
	if err != nil {
		return false, catalog.NewStoreError("exists", err)
	}
	return exists, nil
}

func (r *AssetRepository) QueryByShapeAndGender(ctx context.Context, shapes []string, genders []catalog.Gender) ([]catalog.HairstyleAsset, error) {
	g := make([]string, len(genders))
	for i, v := range genders {
		g[i] = string(v)
	}
	assets, err := r.query(ctx,
		`SELECT `+assetColumns+` FROM hair_assets
		 WHERE face_shape_match && $1 AND gender = ANY($2)
		 ORDER BY id`,
		pq.Array(lowerAll(shapes)), pq.Array(g))
	if err != nil {
		return nil, catalog.NewStoreError("query", err)
	}
	return assets, nil
}

func (r *AssetRepository) CatalogExcerpt(ctx context.Context, limit int) ([]catalog.HairstyleAsset, error) {
	if limit <= 0 {
		return nil, nil
	}
	assets, err := r.query(ctx, `SELECT `+assetColumns+` FROM hair_assets ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, catalog.NewStoreError("excerpt", err)
	}
	return assets, nil
}

func (r *AssetRepository) ListAll(ctx context.Context) ([]catalog.HairstyleAsset, error) {
	assets, err := r.query(ctx, `SELECT `+assetColumns+` FROM hair_assets ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, catalog.NewStoreError("list", err)
	}
	return assets, nil
}

func (r *AssetRepository) Get(ctx context.Context, id int64) (*catalog.HairstyleAsset, error) {
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM hair_assets WHERE id = $1`, id)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, catalog.NewStoreError("get", err)
	}
	return &a, nil
}

func (r *AssetRepository) query(ctx context.Context, query string, args ...any) ([]catalog.HairstyleAsset, error) {
	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []catalog.HairstyleAsset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(s scanner) (catalog.HairstyleAsset, error) {
	var (
		a      catalog.HairstyleAsset
		gender string
	)
	err := s.Scan(&a.ID, &a.Name, &gender, pq.Array(&a.Tags), pq.Array(&a.FaceShapeMatch), &a.ImageURL, &a.Description, &a.CreatedAt)
	a.Gender = catalog.ParseGender(gender)
	return a, err
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
