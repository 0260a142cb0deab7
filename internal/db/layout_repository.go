package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/udisondev/cityscape/internal/building"
	"github.com/udisondev/cityscape/internal/scene"
)

// LayoutRepository stores and loads generated building layouts per epoch.
type LayoutRepository struct {
	db *DB
}

// NewLayoutRepository returns a repository backed by db.
func NewLayoutRepository(db *DB) *LayoutRepository {
	return &LayoutRepository{db: db}
}

// SaveLayout replaces the stored layout for the given epoch with buildings.
// Runs in one transaction; invalid (zeroed) buildings are stored too so the
// loaded layout keeps its indices.
func (r *LayoutRepository) SaveLayout(ctx context.Context, epoch uint64, buildings []building.Building) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning layout transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM building_layouts WHERE epoch = $1`, int64(epoch),
	); err != nil {
		return fmt.Errorf("clearing layout for epoch %d: %w", epoch, err)
	}

	rows := make([][]any, 0, len(buildings))
	for i, b := range buildings {
		rows = append(rows, []any{
			int64(epoch), int32(i),
			b.BCube.Min.X(), b.BCube.Min.Y(), b.BCube.Min.Z(),
			b.BCube.Max.X(), b.BCube.Max.Y(), b.BCube.Max.Z(),
			int32(b.Side.Texture), int32(b.Side.NormalMap), b.Side.Scale,
			int32(b.Roof.Texture), int32(b.Roof.NormalMap), b.Roof.Scale,
			b.SideColor.R, b.SideColor.G, b.SideColor.B, b.SideColor.A,
			b.RoofColor.R, b.RoofColor.G, b.RoofColor.B, b.RoofColor.A,
		})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"building_layouts"},
		[]string{
			"epoch", "idx",
			"min_x", "min_y", "min_z", "max_x", "max_y", "max_z",
			"side_tex", "side_nm", "side_tscale",
			"roof_tex", "roof_nm", "roof_tscale",
			"side_color_r", "side_color_g", "side_color_b", "side_color_a",
			"roof_color_r", "roof_color_g", "roof_color_b", "roof_color_a",
		},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copying layout for epoch %d: %w", epoch, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing layout for epoch %d: %w", epoch, err)
	}
	slog.Info("building layout saved", "epoch", epoch, "buildings", len(buildings))
	return nil
}

// LoadLayout returns the stored layout for the given epoch in index order.
// Returns an empty slice when no layout is stored.
func (r *LayoutRepository) LoadLayout(ctx context.Context, epoch uint64) ([]building.Building, error) {
	rows, err := r.db.pool.Query(ctx,
		`SELECT min_x, min_y, min_z, max_x, max_y, max_z,
		        side_tex, side_nm, side_tscale,
		        roof_tex, roof_nm, roof_tscale,
		        side_color_r, side_color_g, side_color_b, side_color_a,
		        roof_color_r, roof_color_g, roof_color_b, roof_color_a
		 FROM building_layouts WHERE epoch = $1 ORDER BY idx`, int64(epoch),
	)
	if err != nil {
		return nil, fmt.Errorf("querying layout for epoch %d: %w", epoch, err)
	}
	defer rows.Close()

	var out []building.Building
	for rows.Next() {
		var b building.Building
		var sideTex, sideNM, roofTex, roofNM int32
		if err := rows.Scan(
			&b.BCube.Min[0], &b.BCube.Min[1], &b.BCube.Min[2],
			&b.BCube.Max[0], &b.BCube.Max[1], &b.BCube.Max[2],
			&sideTex, &sideNM, &b.Side.Scale,
			&roofTex, &roofNM, &b.Roof.Scale,
			&b.SideColor.R, &b.SideColor.G, &b.SideColor.B, &b.SideColor.A,
			&b.RoofColor.R, &b.RoofColor.G, &b.RoofColor.B, &b.RoofColor.A,
		); err != nil {
			return nil, fmt.Errorf("scanning layout row: %w", err)
		}
		b.Side.Texture = scene.TextureID(sideTex)
		b.Side.NormalMap = scene.TextureID(sideNM)
		b.Roof.Texture = scene.TextureID(roofTex)
		b.Roof.NormalMap = scene.TextureID(roofNM)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating layout rows: %w", err)
	}
	return out, nil
}
