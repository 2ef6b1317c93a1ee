package corpus

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/matsen/refmark/internal/ident"
	"github.com/matsen/refmark/internal/reference"
)

// Cache is an ephemeral SQLite lookup cache over the JSONL corpus. It is
// rebuilt from the JSONL file on demand and can be deleted at any time.
type Cache struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS records (
	key      TEXT PRIMARY KEY,
	type     TEXT NOT NULL,
	title    TEXT NOT NULL,
	year     INTEGER,
	doi      TEXT,
	arxiv_id TEXT,
	isbn     TEXT,
	pmid     TEXT,
	url      TEXT,
	data     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_doi ON records(doi) WHERE doi != '';
CREATE INDEX IF NOT EXISTS idx_records_arxiv ON records(arxiv_id) WHERE arxiv_id != '';
CREATE INDEX IF NOT EXISTS idx_records_isbn ON records(isbn) WHERE isbn != '';
CREATE INDEX IF NOT EXISTS idx_records_pmid ON records(pmid) WHERE pmid != '';
CREATE INDEX IF NOT EXISTS idx_records_url ON records(url) WHERE url != '';
`

// OpenCache opens (creating if needed) the SQLite cache at path.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// RebuildFromJSONL replaces the cache contents with the records from the
// JSONL file at recordsPath.
func (c *Cache) RebuildFromJSONL(recordsPath string) (int, error) {
	records, err := ReadAll(recordsPath)
	if err != nil {
		return 0, err
	}

	tx, err := c.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting rebuild transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM records`); err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO records
			(key, type, title, year, doi, arxiv_id, isbn, pmid, url, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("encoding record %d: %w", i, err)
		}

		// Identifier columns hold the same normalized forms the lookup side
		// queries with.
		doi, _ := ident.NormalizeDOI(rec.DOI)
		arxivID, _ := ident.NormalizeArXiv(rec.ArXivID)
		isbn, _ := ident.NormalizeISBN(rec.ISBN)
		pmid, _ := ident.NormalizePMID(rec.PMID)
		url := ""
		if rec.URL != "" {
			url = ident.NormalizeURL(rec.URL)
		}

		if _, err := stmt.Exec(
			rec.Key, string(rec.Type), rec.Title, rec.Published.Year,
			doi, arxivID, isbn, pmid, url, string(data),
		); err != nil {
			return 0, fmt.Errorf("inserting record %q: %w", rec.Key, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}

	return count, nil
}

// GetByKey looks up a record by its corpus key.
func (c *Cache) GetByKey(key string) (*reference.Record, error) {
	return c.queryOne(`SELECT data FROM records WHERE key = ?`, key)
}

// GetByIdentifier looks up a record by a normalized identifier.
func (c *Cache) GetByIdentifier(id ident.Identifier) (*reference.Record, error) {
	var column string
	switch id.Kind {
	case ident.KindDOI:
		column = "doi"
	case ident.KindArXiv:
		column = "arxiv_id"
	case ident.KindISBN:
		column = "isbn"
	case ident.KindPMID:
		column = "pmid"
	case ident.KindURL:
		column = "url"
	default:
		return nil, fmt.Errorf("unknown identifier kind %q", id.Kind)
	}

	return c.queryOne(
		fmt.Sprintf(`SELECT data FROM records WHERE %s = ? LIMIT 1`, column),
		id.Value)
}

// Lookup finds a record by corpus key first, then by any identifier the
// query string yields (DOI, arXiv, ISBN, PMID, or normalized URL), in
// strategy priority order. Returns nil when nothing matches.
func (c *Cache) Lookup(query string) (*reference.Record, error) {
	rec, err := c.GetByKey(query)
	if err != nil || rec != nil {
		return rec, err
	}

	for _, id := range ident.FromURL(query) {
		rec, err := c.GetByIdentifier(id)
		if err != nil || rec != nil {
			return rec, err
		}
	}
	return nil, nil
}

// Count returns the number of cached records.
func (c *Cache) Count() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

func (c *Cache) queryOne(query string, arg string) (*reference.Record, error) {
	var data string
	err := c.db.QueryRow(query, arg).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying cache: %w", err)
	}

	var rec reference.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decoding cached record: %w", err)
	}
	return &rec, nil
}
