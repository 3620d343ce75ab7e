package legacy

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Reader provides read-only access to the legacy Core Data recipe database.
// The schema uses Core Data's generated table and column names (ZREZEPT,
// ZJAHRESZEIT, ...); the reader flattens those into plain row tuples.
type Reader struct {
	db *sql.DB
}

// OpenReader opens the legacy database at path in read-only mode.
func OpenReader(path string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("legacy database: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open legacy database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping legacy database: %w", err)
	}
	return &Reader{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Reader) Close() error {
	return r.db.Close()
}

// LookupRow is a legacy season or category tuple.
type LookupRow struct {
	ID    int64
	Title string
}

// RecipeRow is one legacy recipe tuple. Optional columns keep their
// sql.Null wrappers so the importer can distinguish absent from empty.
type RecipeRow struct {
	ID          int64
	Name        sql.NullString
	Place       sql.NullString
	Portions    sql.NullString
	Ingredients sql.NullString
	SeasonRef   sql.NullInt64
	CategoryRef sql.NullInt64
	Photo       []byte
	KindLabel   sql.NullString
	AmuseGueule sql.NullInt64
	Snack       sql.NullInt64
	Soup        sql.NullInt64
}

// ReadSeasons returns all legacy season rows.
func (r *Reader) ReadSeasons(ctx context.Context) ([]LookupRow, error) {
	return r.readLookups(ctx, `SELECT Z_PK, ZJAHRESZEIT FROM ZJAHRESZEIT`)
}

// ReadCategories returns all legacy category rows.
func (r *Reader) ReadCategories(ctx context.Context) ([]LookupRow, error) {
	return r.readLookups(ctx, `SELECT Z_PK, ZKATEGORIE FROM ZKATEGORIE`)
}

func (r *Reader) readLookups(ctx context.Context, query string) ([]LookupRow, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LookupRow
	for rows.Next() {
		var row LookupRow
		var title sql.NullString
		if err := rows.Scan(&row.ID, &title); err != nil {
			return nil, err
		}
		row.Title = title.String
		out = append(out, row)
	}
	return out, rows.Err()
}

// ReadRecipes returns all legacy recipe rows. The photo blob lives in a
// separate Core Data table and is resolved through a left join, so rows
// without a photo come back with a nil blob.
//
// Rows whose columns cannot be decoded are skipped, not fatal: each one
// comes back as a RowDiagnostic so the caller can report what was lost.
// Only query-level failures abort.
func (r *Reader) ReadRecipes(ctx context.Context) ([]RecipeRow, []RowDiagnostic, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.Z_PK, r.ZNAME, r.ZORT, r.ZPORTIONEN, r.ZZUTATEN,
			r.ZJAHRESZEIT, r.ZKATEGORIE, p.ZREZEPTPHOTO,
			r.ZART, r.ZAMUSEGUEULE, r.ZSNACK, r.ZSUPPE
		FROM ZREZEPT r
		LEFT JOIN ZREZEPTPHOTO p ON r.ZREZEPTPHOTO = p.Z_PK`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var out []RecipeRow
	var failed []RowDiagnostic
	for rows.Next() {
		var row RecipeRow
		err := rows.Scan(
			&row.ID,
			&row.Name,
			&row.Place,
			&row.Portions,
			&row.Ingredients,
			&row.SeasonRef,
			&row.CategoryRef,
			&row.Photo,
			&row.KindLabel,
			&row.AmuseGueule,
			&row.Snack,
			&row.Soup,
		)
		if err != nil {
			// Z_PK is the first scan target, so row.ID is already
			// assigned when a later column fails to convert.
			failed = append(failed, RowDiagnostic{
				LegacyID: row.ID,
				Reason:   "undecodable row",
				Err:      err,
			})
			continue
		}
		out = append(out, row)
	}
	return out, failed, rows.Err()
}

// ExportPhotos writes every legacy photo blob to dir as photo_<legacyID>.jpg,
// keyed by the owning recipe's legacy primary key. Returns the number of
// files written.
func (r *Reader) ExportPhotos(ctx context.Context, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create photo dir: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT r.Z_PK, p.ZREZEPTPHOTO
		FROM ZREZEPT r
		JOIN ZREZEPTPHOTO p ON r.ZREZEPTPHOTO = p.Z_PK
		WHERE p.ZREZEPTPHOTO IS NOT NULL`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	written := 0
	for rows.Next() {
		var legacyID int64
		var blob []byte
		if err := rows.Scan(&legacyID, &blob); err != nil {
			return written, err
		}
		if len(blob) == 0 {
			continue
		}
		name := filepath.Join(dir, fmt.Sprintf("photo_%d.jpg", legacyID))
		if err := os.WriteFile(name, blob, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", name, err)
		}
		written++
	}
	return written, rows.Err()
}
