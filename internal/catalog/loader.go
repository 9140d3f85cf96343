// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
)

// Source column names of the scraped product export.
const (
	ColumnUniqID      = "Uniq Id"
	ColumnProductID   = "Product Id"
	ColumnRating      = "Product Rating"
	ColumnReviewCount = "Product Reviews Count"
	ColumnCategory    = "Product Category"
	ColumnBrand       = "Product Brand"
	ColumnName        = "Product Name"
	ColumnImageURL    = "Product Image Url"
	ColumnDescription = "Product Description"
	ColumnTags        = "Product Tags"
)

// ErrEmptyPath is returned when LoadTSV is called without a file path.
var ErrEmptyPath = errors.New("catalog path is empty")

// LoaderConfig controls how the raw export is read.
type LoaderConfig struct {
	// Path is the delimited export file.
	Path string

	// Delimiter separates columns. Default: tab.
	Delimiter string

	// Threads caps DuckDB worker threads. Default: 1, which keeps the
	// scan single-streamed.
	Threads int

	// Timeout bounds the whole load. Default: 2m.
	Timeout time.Duration
}

func (c *LoaderConfig) applyDefaults() {
	if c.Delimiter == "" {
		c.Delimiter = "\t"
	}
	if c.Threads <= 0 {
		c.Threads = 1
	}
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Minute
	}
}

// LoadTSV reads the export at cfg.Path and returns rows in file order with
// source columns renamed and missing values defaulted (empty strings, zero
// rating, zero review count).
func LoadTSV(ctx context.Context, cfg LoaderConfig) ([]Product, error) {
	cfg.applyDefaults()
	if cfg.Path == "" {
		return nil, ErrEmptyPath
	}
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("stat catalog file: %w", err)
	}

	connStr := fmt.Sprintf(":memory:?threads=%d&autoinstall_known_extensions=false&autoload_known_extensions=false", cfg.Threads)
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	rows, err := conn.QueryContext(ctx, buildLoadQuery(cfg.Path, cfg.Delimiter))
	if err != nil {
		return nil, fmt.Errorf("query catalog file: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var (
			p           Product
			reviewCount int64
		)
		if err := rows.Scan(
			&p.ID, &p.ProdID, &p.Rating, &reviewCount, &p.Category,
			&p.Brand, &p.Name, &p.ImageURL, &p.Description, &p.Tags,
		); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		p.ReviewCount = int(reviewCount)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog rows: %w", err)
	}

	return products, nil
}

// buildLoadQuery renders the read_csv projection. Every column is read as
// VARCHAR so malformed numbers fall through TRY_CAST to the zero default
// instead of failing the whole scan.
func buildLoadQuery(path, delim string) string {
	text := func(col string) string {
		return fmt.Sprintf("COALESCE(%s, '')", quoteIdent(col))
	}

	return fmt.Sprintf(`
		SELECT
			%s AS id,
			%s AS prod_id,
			COALESCE(TRY_CAST(%s AS DOUBLE), 0) AS rating,
			COALESCE(TRY_CAST(TRY_CAST(%s AS DOUBLE) AS BIGINT), 0) AS review_count,
			%s AS category,
			%s AS brand,
			%s AS name,
			%s AS image_url,
			%s AS description,
			%s AS tags
		FROM read_csv(%s, delim = %s, header = true, all_varchar = true)
	`,
		text(ColumnUniqID),
		text(ColumnProductID),
		quoteIdent(ColumnRating),
		quoteIdent(ColumnReviewCount),
		text(ColumnCategory),
		text(ColumnBrand),
		text(ColumnName),
		text(ColumnImageURL),
		text(ColumnDescription),
		text(ColumnTags),
		quoteLiteral(path),
		quoteLiteral(delim),
	)
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
