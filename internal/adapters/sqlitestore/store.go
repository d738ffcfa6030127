// Package sqlitestore provides a SQLite-backed FeatureStore. Geometry is
// stored as WKB and prefiltered through an R*Tree virtual table.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/jobrunner/mapassist/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS polygons (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	area    INTEGER NOT NULL,
	geom    BLOB    NOT NULL,
	tags    TEXT    NOT NULL,
	version INTEGER NOT NULL
);
CREATE VIRTUAL TABLE IF NOT EXISTS polygons_rtree USING rtree(id, minx, maxx, miny, maxy);
`

// Store implements the FeatureStore and Applier ports on SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// Single writer; also keeps :memory: databases on one connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Count returns the number of stored polygons.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM polygons").Scan(&n)
	return n, err
}

// Load inserts polygons in one transaction, keeping their IDs when set.
func (s *Store) Load(ctx context.Context, polygons ...*domain.Polygon) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, p := range polygons {
			if _, err := insert(ctx, tx, p, max(p.Version, 1)); err != nil {
				return err
			}
		}
		return nil
	})
}

// QueryByExtent implements output.FeatureStore.
func (s *Store) QueryByExtent(ctx context.Context, extent domain.Extent) ([]*domain.Polygon, error) {
	if !extent.IsValid() {
		return nil, fmt.Errorf("query extent %+v: %w", extent, domain.ErrInputInvalid)
	}

	query := `
		SELECT p.id, p.area, p.geom, p.tags, p.version
		FROM polygons p
		JOIN polygons_rtree r ON p.id = r.id
		WHERE r.minx <= ? AND r.maxx >= ? AND r.miny <= ? AND r.maxy >= ?
		ORDER BY p.id
	`
	return s.queryPolygons(ctx, query, extent.MaxX, extent.MinX, extent.MaxY, extent.MinY)
}

// AllPolygons implements output.FeatureStore.
func (s *Store) AllPolygons(ctx context.Context) ([]*domain.Polygon, error) {
	return s.queryPolygons(ctx, "SELECT id, area, geom, tags, version FROM polygons ORDER BY id")
}

// Get implements output.FeatureStore.
func (s *Store) Get(ctx context.Context, id int64) (*domain.Polygon, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, area, geom, tags, version FROM polygons WHERE id = ?", id)
	p, err := scanPolygon(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("polygon %d: %w", id, domain.ErrFeatureVanished)
	}
	return p, err
}

// Apply implements output.Applier inside one transaction.
func (s *Store) Apply(ctx context.Context, cmd domain.Command) ([]int64, error) {
	var created []int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, leaf := range domain.Flatten(cmd) {
			id, err := applyLeaf(ctx, tx, leaf)
			if err != nil {
				return err
			}
			if id != 0 {
				created = append(created, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, &domain.CommandError{Command: cmd.Describe(), Err: err}
	}
	return created, nil
}

func applyLeaf(ctx context.Context, tx *sql.Tx, leaf domain.Command) (int64, error) {
	switch c := leaf.(type) {
	case domain.AddFeature:
		if c.Polygon == nil {
			return 0, fmt.Errorf("add without polygon: %w", domain.ErrInputInvalid)
		}
		p := c.Polygon.Clone()
		p.ID = 0
		return insert(ctx, tx, p, 1)

	case domain.DeleteFeatures:
		for _, id := range c.IDs {
			if err := mustExist(ctx, tx, id); err != nil {
				return 0, err
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM polygons WHERE id = ?", id); err != nil {
				return 0, err
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM polygons_rtree WHERE id = ?", id); err != nil {
				return 0, err
			}
		}

	case domain.SetTag:
		if c.Key == "" {
			return 0, fmt.Errorf("empty tag key: %w", domain.ErrInputInvalid)
		}
		for _, id := range c.IDs {
			p, err := scanPolygon(tx.QueryRowContext(ctx, "SELECT id, area, geom, tags, version FROM polygons WHERE id = ?", id))
			if errors.Is(err, sql.ErrNoRows) {
				return 0, fmt.Errorf("polygon %d: %w", id, domain.ErrFeatureVanished)
			}
			if err != nil {
				return 0, err
			}
			if p.Tags == nil {
				p.Tags = make(map[string]string)
			}
			p.Tags[c.Key] = c.Value
			tags, err := json.Marshal(p.Tags)
			if err != nil {
				return 0, err
			}
			if _, err := tx.ExecContext(ctx, "UPDATE polygons SET tags = ?, version = version + 1 WHERE id = ?", string(tags), id); err != nil {
				return 0, err
			}
		}

	case domain.SetNodes:
		if err := mustExist(ctx, tx, c.ID); err != nil {
			return 0, err
		}
		geom, err := encodeNodes(c.Nodes)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, "UPDATE polygons SET geom = ?, version = version + 1 WHERE id = ?", geom, c.ID); err != nil {
			return 0, err
		}
		e := domain.GeoExtent(c.Nodes...)
		if _, err := tx.ExecContext(ctx,
			"UPDATE polygons_rtree SET minx = ?, maxx = ?, miny = ?, maxy = ? WHERE id = ?",
			e.MinX, e.MaxX, e.MinY, e.MaxY, c.ID); err != nil {
			return 0, err
		}

	default:
		return 0, fmt.Errorf("unsupported command %T: %w", leaf, domain.ErrInputInvalid)
	}
	return 0, nil
}

func insert(ctx context.Context, tx *sql.Tx, p *domain.Polygon, version int64) (int64, error) {
	geom, err := encodeNodes(p.Nodes)
	if err != nil {
		return 0, fmt.Errorf("polygon %d: %w", p.ID, err)
	}
	tags, err := json.Marshal(nonNil(p.Tags))
	if err != nil {
		return 0, err
	}

	var id any
	if p.ID != 0 {
		id = p.ID
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO polygons (id, area, geom, tags, version) VALUES (?, ?, ?, ?, ?)",
		id, p.Area, geom, string(tags), version)
	if err != nil {
		return 0, fmt.Errorf("inserting polygon %d: %w", p.ID, err)
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	e := p.Extent()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO polygons_rtree (id, minx, maxx, miny, maxy) VALUES (?, ?, ?, ?, ?)",
		newID, e.MinX, e.MaxX, e.MinY, e.MaxY); err != nil {
		return 0, fmt.Errorf("indexing polygon %d: %w", newID, err)
	}
	return newID, nil
}

func mustExist(ctx context.Context, tx *sql.Tx, id int64) error {
	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM polygons WHERE id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("polygon %d: %w", id, domain.ErrFeatureVanished)
	}
	return nil
}

func (s *Store) queryPolygons(ctx context.Context, query string, args ...any) ([]*domain.Polygon, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying polygons: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.Polygon
	for rows.Next() {
		p, err := scanPolygon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPolygon(row scanner) (*domain.Polygon, error) {
	var (
		p    domain.Polygon
		geom []byte
		tags string
	)
	if err := row.Scan(&p.ID, &p.Area, &geom, &tags, &p.Version); err != nil {
		return nil, err
	}

	nodes, err := decodeNodes(geom)
	if err != nil {
		return nil, fmt.Errorf("polygon %d geometry: %w", p.ID, err)
	}
	p.Nodes = nodes

	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("polygon %d tags: %w", p.ID, err)
	}
	return &p, nil
}

func encodeNodes(nodes []domain.GeoPoint) ([]byte, error) {
	if len(nodes) < 2 {
		return nil, fmt.Errorf("%d nodes: %w", len(nodes), domain.ErrTooFewPoints)
	}
	ls := make(orb.LineString, len(nodes))
	for i, n := range nodes {
		if err := n.Validate(); err != nil {
			return nil, err
		}
		ls[i] = orb.Point{n.Lon, n.Lat}
	}
	return wkb.Marshal(ls)
}

func decodeNodes(data []byte) ([]domain.GeoPoint, error) {
	g, err := wkb.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	ls, ok := g.(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("unexpected geometry %s", g.GeoJSONType())
	}
	nodes := make([]domain.GeoPoint, len(ls))
	for i, pt := range ls {
		nodes[i] = domain.GeoPoint{Lat: pt[1], Lon: pt[0]}
	}
	return nodes, nil
}

func nonNil(tags map[string]string) map[string]string {
	if tags == nil {
		return map[string]string{}
	}
	return tags
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
