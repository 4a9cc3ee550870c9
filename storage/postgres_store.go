package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"

	"listing-search/models"
)

// listingColumns is the column order shared by inserts and scans.
const listingColumns = `url, title, picture_url, description, price, rating,
	location, region, state, province, country, features, house_details`

const columnsPerRow = 13

// PostgresStore reads and imports listings in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			id            SERIAL PRIMARY KEY,
			url           TEXT   UNIQUE NOT NULL,
			title         TEXT   NOT NULL DEFAULT '',
			picture_url   TEXT   NOT NULL DEFAULT '',
			description   TEXT   NOT NULL DEFAULT '',
			price         TEXT   NOT NULL DEFAULT '',
			rating        TEXT   NOT NULL DEFAULT '',
			location      TEXT   NOT NULL DEFAULT '',
			region        TEXT   NOT NULL DEFAULT '',
			state         TEXT   NOT NULL DEFAULT '',
			province      TEXT   NOT NULL DEFAULT '',
			country       TEXT   NOT NULL DEFAULT '',
			features      TEXT[] NOT NULL DEFAULT '{}',
			house_details TEXT[] NOT NULL DEFAULT '{}',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_location ON listings(location);
		CREATE INDEX IF NOT EXISTS idx_listings_features ON listings USING GIN (features);
	`)
	return err
}

// Import batch-inserts listings, skipping URLs already stored. It returns
// the number of rows actually inserted.
func (ps *PostgresStore) Import(ctx context.Context, listings []*models.Listing) (int, error) {
	const batchSize = 50
	inserted := 0
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		n, err := ps.insertBatch(ctx, listings[i:end])
		if err != nil {
			return inserted, err
		}
		inserted += n
	}
	return inserted, nil
}

func (ps *PostgresStore) insertBatch(ctx context.Context, batch []*models.Listing) (int, error) {
	query, args := buildInsert(batch)
	res, err := ps.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("postgres: insert batch: %w", err)
	}
	return rowsAffected(res)
}

func rowsAffected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("postgres: rows affected: %w", err)
	}
	return int(n), nil
}

func buildInsert(batch []*models.Listing) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*columnsPerRow)

	for idx, l := range batch {
		placeholders := make([]string, columnsPerRow)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", idx*columnsPerRow+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			l.URL, l.Title, l.PictureURL, l.Description, l.Price, l.Rating,
			l.Location, l.Region, l.State, l.Province, l.Country,
			pq.Array(nonNil(l.Features)), pq.Array(nonNil(l.HouseDetails)))
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (%s)
		VALUES %s
		ON CONFLICT (url) DO NOTHING
	`, listingColumns, strings.Join(valueStrings, ","))
	return query, valueArgs
}

// FetchListings returns listings whose location contains query,
// case-insensitively, or every listing when query is empty.
func (ps *PostgresStore) FetchListings(ctx context.Context, query string) ([]*models.Listing, error) {
	return ps.query(ctx, strings.TrimSpace(query), nil)
}

// FetchFilters returns listings matching searchTerm that carry every
// feature, plus the sorted feature vocabulary of the whole table.
func (ps *PostgresStore) FetchFilters(ctx context.Context, searchTerm string, features []string) (*models.FiltersResponse, error) {
	listings, err := ps.query(ctx, strings.TrimSpace(searchTerm), features)
	if err != nil {
		return nil, err
	}

	rows, err := ps.db.QueryContext(ctx, `SELECT DISTINCT unnest(features) AS feature FROM listings`)
	if err != nil {
		return nil, fmt.Errorf("postgres: feature vocabulary: %w", err)
	}
	defer rows.Close()

	vocab := []string{}
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("postgres: scan feature: %w", err)
		}
		vocab = append(vocab, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: feature vocabulary: %w", err)
	}
	sort.Strings(vocab)

	return &models.FiltersResponse{Features: vocab, Listings: listings}, nil
}

func (ps *PostgresStore) query(ctx context.Context, search string, features []string) ([]*models.Listing, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT `+listingColumns+`
		FROM listings
		WHERE ($1 = '' OR location ILIKE '%' || $1 || '%')
		  AND features @> $2
		ORDER BY id
	`, search, pq.Array(nonNil(features)))
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch listings: %w", err)
	}
	defer rows.Close()

	listings := []*models.Listing{}
	for rows.Next() {
		l := &models.Listing{}
		if err := rows.Scan(
			&l.URL, &l.Title, &l.PictureURL, &l.Description, &l.Price, &l.Rating,
			&l.Location, &l.Region, &l.State, &l.Province, &l.Country,
			pq.Array(&l.Features), pq.Array(&l.HouseDetails),
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
