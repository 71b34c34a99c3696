package catalog

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB database holding a signature catalog.
// It is only read at process start; the loaded Catalog is what requests use.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create catalog directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS signatures (
		gene VARCHAR,
		chrom VARCHAR,
		pos BIGINT,
		ref VARCHAR,
		alt VARCHAR,
		condition VARCHAR,
		pathogenicity DOUBLE
	)`)
	return err
}

// Count returns the number of stored signatures.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM signatures").Scan(&n); err != nil {
		return 0, fmt.Errorf("count signatures: %w", err)
	}
	return n, nil
}

// Clear removes all stored signatures.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM signatures")
	return err
}

// Write appends signatures using the DuckDB Appender API.
func (s *Store) Write(sigs []Signature) error {
	if len(sigs) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "signatures")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, sig := range sigs {
		if err := appender.AppendRow(
			sig.Gene, sig.Chrom, sig.Pos, sig.Ref, sig.Alt,
			sig.Condition, sig.BasePathogenicity,
		); err != nil {
			return fmt.Errorf("append signature %s: %w", sig.Gene, err)
		}
	}

	return appender.Flush()
}

// ImportTSV replaces the stored signatures with the rows of a tab-separated file.
// The file must start with a header line; columns are, in order:
//
//	gene  chrom  pos  ref  alt  condition  pathogenicity
//
// The replacement is atomic. A file that fails to parse or yields an invalid
// catalog leaves the previous signatures in place.
func (s *Store) ImportTSV(tsvPath string) (int64, error) {
	if _, err := os.Stat(tsvPath); err != nil {
		return 0, fmt.Errorf("stat signature file: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec("DELETE FROM signatures"); err != nil {
		return 0, fmt.Errorf("clear signatures: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO signatures
		SELECT gene, chrom, pos, ref, alt, condition, pathogenicity
		FROM read_csv('%s', delim='\t', header=true,
			columns={
				'gene': 'VARCHAR',
				'chrom': 'VARCHAR',
				'pos': 'BIGINT',
				'ref': 'VARCHAR',
				'alt': 'VARCHAR',
				'condition': 'VARCHAR',
				'pathogenicity': 'DOUBLE'
			})`, strings.ReplaceAll(tsvPath, "'", "''"))
	if _, err := tx.Exec(query); err != nil {
		return 0, fmt.Errorf("loading signatures: %w", err)
	}

	sigs, err := readSignatures(tx)
	if err != nil {
		return 0, err
	}
	if err := Validate(sigs); err != nil {
		return 0, fmt.Errorf("validate %s: %w", tsvPath, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return int64(len(sigs)), nil
}

// Signatures reads all stored signatures in insertion order.
func (s *Store) Signatures() ([]Signature, error) {
	return readSignatures(s.db)
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

func readSignatures(q querier) ([]Signature, error) {
	rows, err := q.Query(`SELECT gene, chrom, pos, ref, alt, condition, pathogenicity
		FROM signatures ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query signatures: %w", err)
	}
	defer rows.Close()

	var sigs []Signature
	for rows.Next() {
		var sig Signature
		if err := rows.Scan(&sig.Gene, &sig.Chrom, &sig.Pos, &sig.Ref, &sig.Alt,
			&sig.Condition, &sig.BasePathogenicity); err != nil {
			return nil, fmt.Errorf("scan signature: %w", err)
		}
		sigs = append(sigs, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signatures: %w", err)
	}
	return sigs, nil
}

// Load reads and validates the catalog stored in the DuckDB file at path.
// An empty path returns the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("catalog database: %w", err)
	}

	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	sigs, err := s.Signatures()
	if err != nil {
		return nil, err
	}
	c, err := New(sigs)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return c, nil
}
