package legacy

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/cookbookapp/cookbook-server/internal/domain"
	"github.com/cookbookapp/cookbook-server/internal/store/sqlite"

	_ "modernc.org/sqlite"
)

const fixtureSchema = `
	CREATE TABLE ZJAHRESZEIT (Z_PK INTEGER PRIMARY KEY, ZJAHRESZEIT TEXT);
	CREATE TABLE ZKATEGORIE (Z_PK INTEGER PRIMARY KEY, ZKATEGORIE TEXT);
	CREATE TABLE ZREZEPTPHOTO (Z_PK INTEGER PRIMARY KEY, ZREZEPTPHOTO BLOB);
	CREATE TABLE ZREZEPT (
		Z_PK INTEGER PRIMARY KEY,
		ZNAME TEXT, ZORT TEXT, ZPORTIONEN TEXT, ZZUTATEN TEXT,
		ZJAHRESZEIT INTEGER, ZKATEGORIE INTEGER, ZREZEPTPHOTO INTEGER,
		ZART TEXT, ZAMUSEGUEULE INTEGER, ZSNACK INTEGER, ZSUPPE INTEGER
	);
`

// newFixtureDB creates a legacy database file populated by exec statements.
func newFixtureDB(t *testing.T, statements ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "legacy.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(fixtureSchema); err != nil {
		t.Fatalf("exec fixture schema: %v", err)
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return path
}

func newDestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "dest.db"), logger)
	if err != nil {
		t.Fatalf("open destination store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestImporter(t *testing.T, legacyPath string) (*Importer, *sqlite.Store) {
	t.Helper()
	reader, err := OpenReader(legacyPath)
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	t.Cleanup(func() { reader.Close() })
	dest := newDestStore(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return NewImporter(reader, dest, logger), dest
}

func TestImporterRun(t *testing.T) {
	path := newFixtureDB(t,
		`INSERT INTO ZJAHRESZEIT VALUES (1, 'Sommer'), (2, 'Winter')`,
		`INSERT INTO ZKATEGORIE VALUES (1, 'Hauptspeisen'), (2, 'Desserts')`,
		`INSERT INTO ZREZEPT VALUES
			(1, 'Gazpacho', 'Spanien', '4', 'Tomaten', 1, 1, NULL, 'Vegan', 1, 0, 1),
			(2, 'Eintopf', NULL, '6', 'Gemuese', 2, 1, NULL, 'Sonstiges', 0, 0, 0),
			(3, 'Kuchen', NULL, NULL, 'Mehl', 1, 2, NULL, NULL, 0, 0, 0)`,
	)
	im, dest := newTestImporter(t, path)
	ctx := context.Background()

	result, err := im.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.SeasonsImported != 2 {
		t.Errorf("SeasonsImported: got %d, want 2", result.SeasonsImported)
	}
	if result.CategoriesImported != 2 {
		t.Errorf("CategoriesImported: got %d, want 2", result.CategoriesImported)
	}
	if result.RecipesImported != 3 {
		t.Errorf("RecipesImported: got %d, want 3", result.RecipesImported)
	}
	if len(result.Skipped) != 0 {
		t.Errorf("Skipped: got %v, want none", result.Skipped)
	}
	if len(result.Dangling) != 0 {
		t.Errorf("Dangling: got %v, want none", result.Dangling)
	}

	recipes, err := dest.ListRecipes(ctx)
	if err != nil {
		t.Fatalf("ListRecipes: %v", err)
	}
	if len(recipes) != 3 {
		t.Fatalf("recipes: got %d, want 3", len(recipes))
	}

	byName := make(map[string]*domain.Recipe, len(recipes))
	for _, r := range recipes {
		byName[r.Name] = r
	}

	gazpacho := byName["Gazpacho"]
	if gazpacho.Kinds != domain.KindVegan {
		t.Errorf("Gazpacho Kinds: got %d, want %d", gazpacho.Kinds, domain.KindVegan)
	}
	wantSpecial := domain.SpecialAmuseGueule | domain.SpecialSoup
	if gazpacho.Specials != wantSpecial {
		t.Errorf("Gazpacho Specials: got %d, want %d", gazpacho.Specials, wantSpecial)
	}
	if gazpacho.Place != "Spanien" {
		t.Errorf("Gazpacho Place: got %q, want %q", gazpacho.Place, "Spanien")
	}

	// Unrecognized and absent kind labels both import without flags.
	if byName["Eintopf"].Kinds != 0 {
		t.Errorf("Eintopf Kinds: got %d, want 0", byName["Eintopf"].Kinds)
	}
	if byName["Kuchen"].Kinds != 0 {
		t.Errorf("Kuchen Kinds: got %d, want 0", byName["Kuchen"].Kinds)
	}

	// References resolved through the legacy id maps.
	season, err := dest.GetSeason(ctx, gazpacho.SeasonID)
	if err != nil {
		t.Fatalf("GetSeason: %v", err)
	}
	if season.Title != "Sommer" {
		t.Errorf("season: got %q, want %q", season.Title, "Sommer")
	}
	category, err := dest.GetCategory(ctx, byName["Kuchen"].CategoryID)
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if category.Title != "Desserts" {
		t.Errorf("category: got %q, want %q", category.Title, "Desserts")
	}
}

func TestImporterDanglingReference(t *testing.T) {
	path := newFixtureDB(t,
		`INSERT INTO ZJAHRESZEIT VALUES (1, 'Sommer')`,
		`INSERT INTO ZKATEGORIE VALUES (1, 'Hauptspeisen')`,
		`INSERT INTO ZREZEPT VALUES
			(1, 'Salat', NULL, NULL, NULL, 99, 1, NULL, NULL, 0, 0, 0)`,
	)
	im, dest := newTestImporter(t, path)
	ctx := context.Background()

	result, err := im.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.RecipesImported != 1 {
		t.Fatalf("RecipesImported: got %d, want 1", result.RecipesImported)
	}
	if len(result.Dangling) != 1 {
		t.Fatalf("Dangling: got %v, want one entry", result.Dangling)
	}
	d := result.Dangling[0]
	if d.LegacyID != 1 || d.Field != "season" || d.Ref != 99 {
		t.Errorf("Dangling[0]: got %+v", d)
	}

	// The row still lands, wired to the synthesized default season.
	recipes, err := dest.ListRecipes(ctx)
	if err != nil {
		t.Fatalf("ListRecipes: %v", err)
	}
	season, err := dest.GetSeason(ctx, recipes[0].SeasonID)
	if err != nil {
		t.Fatalf("GetSeason: %v", err)
	}
	if season.Title != domain.DefaultSeasonTitle {
		t.Errorf("season: got %q, want %q", season.Title, domain.DefaultSeasonTitle)
	}
}

func TestImporterSkipsNamelessRows(t *testing.T) {
	path := newFixtureDB(t,
		`INSERT INTO ZJAHRESZEIT VALUES (1, 'Sommer')`,
		`INSERT INTO ZKATEGORIE VALUES (1, 'Hauptspeisen')`,
		`INSERT INTO ZREZEPT VALUES
			(1, NULL, NULL, NULL, NULL, 1, 1, NULL, NULL, 0, 0, 0),
			(2, 'Brot', NULL, NULL, NULL, 1, 1, NULL, NULL, 0, 0, 0)`,
	)
	im, _ := newTestImporter(t, path)

	result, err := im.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.RecipesImported != 1 {
		t.Errorf("RecipesImported: got %d, want 1", result.RecipesImported)
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("Skipped: got %v, want one entry", result.Skipped)
	}
	if result.Skipped[0].LegacyID != 1 {
		t.Errorf("Skipped[0].LegacyID: got %d, want 1", result.Skipped[0].LegacyID)
	}
}

func TestImporterSkipsUndecodableRows(t *testing.T) {
	path := newFixtureDB(t,
		`INSERT INTO ZJAHRESZEIT VALUES (1, 'Sommer')`,
		`INSERT INTO ZKATEGORIE VALUES (1, 'Hauptspeisen')`,
		`INSERT INTO ZREZEPT VALUES
			(1, 'Kaputt', NULL, NULL, NULL, 1, 1, NULL, NULL, 0, 'kaputt', 0),
			(2, 'Brot', NULL, NULL, NULL, 1, 1, NULL, NULL, 0, 0, 0)`,
	)
	im, dest := newTestImporter(t, path)
	ctx := context.Background()

	result, err := im.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.RecipesImported != 1 {
		t.Errorf("RecipesImported: got %d, want 1", result.RecipesImported)
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("Skipped: got %v, want one entry", result.Skipped)
	}
	d := result.Skipped[0]
	if d.LegacyID != 1 {
		t.Errorf("Skipped[0].LegacyID: got %d, want 1", d.LegacyID)
	}
	if d.Err == nil {
		t.Error("Skipped[0].Err: got nil, want scan error")
	}

	recipes, err := dest.ListRecipes(ctx)
	if err != nil {
		t.Fatalf("ListRecipes: %v", err)
	}
	if len(recipes) != 1 || recipes[0].Name != "Brot" {
		t.Errorf("recipes: got %v, want only Brot", recipes)
	}
}

func TestImporterDuplicateLookupTitles(t *testing.T) {
	path := newFixtureDB(t,
		`INSERT INTO ZJAHRESZEIT VALUES (1, 'Sommer'), (2, 'Sommer')`,
		`INSERT INTO ZKATEGORIE VALUES (1, 'Hauptspeisen')`,
		`INSERT INTO ZREZEPT VALUES
			(1, 'Salat', NULL, NULL, NULL, 2, 1, NULL, NULL, 0, 0, 0)`,
	)
	im, dest := newTestImporter(t, path)
	ctx := context.Background()

	result, err := im.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Second 'Sommer' maps onto the first, both legacy ids resolve.
	if result.SeasonsImported != 1 {
		t.Errorf("SeasonsImported: got %d, want 1", result.SeasonsImported)
	}
	if len(result.Dangling) != 0 {
		t.Errorf("Dangling: got %v, want none", result.Dangling)
	}

	recipes, err := dest.ListRecipes(ctx)
	if err != nil {
		t.Fatalf("ListRecipes: %v", err)
	}
	season, err := dest.GetSeason(ctx, recipes[0].SeasonID)
	if err != nil {
		t.Fatalf("GetSeason: %v", err)
	}
	if season.Title != "Sommer" {
		t.Errorf("season: got %q, want %q", season.Title, "Sommer")
	}
}

func TestReaderPhotoJoin(t *testing.T) {
	path := newFixtureDB(t,
		`INSERT INTO ZREZEPTPHOTO VALUES (7, X'FFD8FFE0')`,
		`INSERT INTO ZREZEPT VALUES
			(1, 'MitFoto', NULL, NULL, NULL, NULL, NULL, 7, NULL, 0, 0, 0),
			(2, 'OhneFoto', NULL, NULL, NULL, NULL, NULL, NULL, NULL, 0, 0, 0)`,
	)
	reader, err := OpenReader(path)
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	defer reader.Close()

	rows, failed, err := reader.ReadRecipes(context.Background())
	if err != nil {
		t.Fatalf("ReadRecipes: %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("failed: got %v, want none", failed)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(rows))
	}
	byName := map[string][]byte{}
	for _, row := range rows {
		byName[row.Name.String] = row.Photo
	}
	if !bytes.Equal(byName["MitFoto"], []byte{0xFF, 0xD8, 0xFF, 0xE0}) {
		t.Errorf("MitFoto blob: got %v", byName["MitFoto"])
	}
	if byName["OhneFoto"] != nil {
		t.Errorf("OhneFoto blob: got %v, want nil", byName["OhneFoto"])
	}
}

func TestExportPhotos(t *testing.T) {
	path := newFixtureDB(t,
		`INSERT INTO ZREZEPTPHOTO VALUES (7, X'FFD8FFE0')`,
		`INSERT INTO ZREZEPT VALUES
			(3, 'MitFoto', NULL, NULL, NULL, NULL, NULL, 7, NULL, 0, 0, 0)`,
	)
	reader, err := OpenReader(path)
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	defer reader.Close()

	dir := filepath.Join(t.TempDir(), "photos")
	n, err := reader.ExportPhotos(context.Background(), dir)
	if err != nil {
		t.Fatalf("ExportPhotos: %v", err)
	}
	if n != 1 {
		t.Errorf("written: got %d, want 1", n)
	}

	data, err := os.ReadFile(filepath.Join(dir, "photo_3.jpg"))
	if err != nil {
		t.Fatalf("read exported photo: %v", err)
	}
	if !bytes.Equal(data, []byte{0xFF, 0xD8, 0xFF, 0xE0}) {
		t.Errorf("photo bytes: got %v", data)
	}
}

func TestOpenReaderMissingFile(t *testing.T) {
	if _, err := OpenReader(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Fatal("OpenReader: expected error for missing file")
	}
}
