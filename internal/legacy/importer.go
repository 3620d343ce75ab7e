package legacy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cookbookapp/cookbook-server/internal/domain"
	"github.com/cookbookapp/cookbook-server/internal/id"
	"github.com/cookbookapp/cookbook-server/internal/store"
	"github.com/cookbookapp/cookbook-server/internal/store/sqlite"
)

// kindLabels maps the four legacy free-text kind labels to flag values.
// Anything else (including NULL) imports with no kind flags.
var kindLabels = map[string]domain.Kind{
	"Vegan":       domain.KindVegan,
	"Vegetarisch": domain.KindVegetarian,
	"Fisch":       domain.KindFish,
	"Fleisch":     domain.KindMeat,
}

// RowDiagnostic records a legacy recipe row that could not be imported.
type RowDiagnostic struct {
	LegacyID int64
	Reason   string
	Err      error
}

func (d RowDiagnostic) String() string {
	if d.Err != nil {
		return fmt.Sprintf("row %d: %s: %v", d.LegacyID, d.Reason, d.Err)
	}
	return fmt.Sprintf("row %d: %s", d.LegacyID, d.Reason)
}

// DanglingReference records a legacy recipe row whose season or category
// reference pointed at a row absent from the legacy lookup tables. The
// recipe is still imported, with the synthesized default in place of the
// broken reference.
type DanglingReference struct {
	LegacyID int64  // recipe row
	Field    string // "season" or "category"
	Ref      int64  // unresolvable legacy id
}

func (d DanglingReference) String() string {
	return fmt.Sprintf("row %d: %s reference %d does not resolve", d.LegacyID, d.Field, d.Ref)
}

// Result summarizes one migration run.
type Result struct {
	SeasonsImported    int
	CategoriesImported int
	RecipesImported    int
	Skipped            []RowDiagnostic
	Dangling           []DanglingReference
	Duration           time.Duration
}

// Importer migrates a legacy database into the destination store.
// Designed for exactly-once use against an empty store; re-running
// against a populated store duplicates recipe records.
type Importer struct {
	reader *Reader
	store  *sqlite.Store
	logger *slog.Logger
}

// NewImporter creates an importer over an opened reader and destination store.
func NewImporter(reader *Reader, s *sqlite.Store, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{reader: reader, store: s, logger: logger}
}

// Run migrates seasons, categories, and recipes, in that order.
// Row-level recipe failures are skipped and collected; lookup failures
// abort the run since every recipe depends on the id maps.
func (im *Importer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{}

	seasonMap, err := im.importSeasons(ctx, result)
	if err != nil {
		return result, fmt.Errorf("import seasons: %w", err)
	}
	categoryMap, err := im.importCategories(ctx, result)
	if err != nil {
		return result, fmt.Errorf("import categories: %w", err)
	}

	if err := im.importRecipes(ctx, seasonMap, categoryMap, result); err != nil {
		return result, fmt.Errorf("import recipes: %w", err)
	}

	result.Duration = time.Since(start)

	im.logger.Info("legacy import completed",
		"seasons", result.SeasonsImported,
		"categories", result.CategoriesImported,
		"recipes", result.RecipesImported,
		"skipped", len(result.Skipped),
		"dangling", len(result.Dangling),
		"duration", result.Duration,
	)
	return result, nil
}

func (im *Importer) importSeasons(ctx context.Context, result *Result) (map[int64]string, error) {
	rows, err := im.reader.ReadSeasons(ctx)
	if err != nil {
		return nil, err
	}

	idMap := make(map[int64]string, len(rows))
	for _, row := range rows {
		season := &domain.Season{Title: row.Title}
		season.ID = id.MustGenerate("ssn")
		season.InitTimestamps()

		err := im.store.CreateSeason(ctx, season)
		switch {
		case err == nil:
			result.SeasonsImported++
		case err == store.ErrAlreadyExists:
			// Duplicate legacy title; map to the existing row.
			existing, gerr := im.store.GetSeasonByTitle(ctx, row.Title)
			if gerr != nil {
				return nil, gerr
			}
			season = existing
		default:
			return nil, err
		}
		idMap[row.ID] = season.ID
	}
	return idMap, nil
}

func (im *Importer) importCategories(ctx context.Context, result *Result) (map[int64]string, error) {
	rows, err := im.reader.ReadCategories(ctx)
	if err != nil {
		return nil, err
	}

	idMap := make(map[int64]string, len(rows))
	for _, row := range rows {
		category := &domain.Category{Title: row.Title}
		category.ID = id.MustGenerate("cat")
		category.InitTimestamps()

		err := im.store.CreateCategory(ctx, category)
		switch {
		case err == nil:
			result.CategoriesImported++
		case err == store.ErrAlreadyExists:
			existing, gerr := im.store.GetCategoryByTitle(ctx, row.Title)
			if gerr != nil {
				return nil, gerr
			}
			category = existing
		default:
			return nil, err
		}
		idMap[row.ID] = category.ID
	}
	return idMap, nil
}

func (im *Importer) importRecipes(ctx context.Context, seasonMap, categoryMap map[int64]string, result *Result) error {
	rows, failed, err := im.reader.ReadRecipes(ctx)
	if err != nil {
		return err
	}
	for _, diag := range failed {
		im.logger.Warn("skipping undecodable legacy recipe",
			"legacy_id", diag.LegacyID,
			"error", diag.Err,
		)
	}
	result.Skipped = append(result.Skipped, failed...)

	for _, row := range rows {
		if !row.Name.Valid || row.Name.String == "" {
			result.Skipped = append(result.Skipped, RowDiagnostic{
				LegacyID: row.ID,
				Reason:   "missing name",
			})
			continue
		}

		recipe := &domain.Recipe{
			Name:        row.Name.String,
			Place:       row.Place.String,
			Portions:    row.Portions.String,
			Ingredients: row.Ingredients.String,
			Photo:       row.Photo,
			Kinds:       kindLabels[row.KindLabel.String],
		}
		recipe.ID = id.MustGenerate("rcp")
		recipe.InitTimestamps()

		if row.AmuseGueule.Int64 != 0 {
			recipe.Specials |= domain.SpecialAmuseGueule
		}
		if row.Snack.Int64 != 0 {
			recipe.Specials |= domain.SpecialSnack
		}
		if row.Soup.Int64 != 0 {
			recipe.Specials |= domain.SpecialSoup
		}

		seasonID, ok := seasonMap[row.SeasonRef.Int64]
		if row.SeasonRef.Valid && !ok {
			result.Dangling = append(result.Dangling, DanglingReference{
				LegacyID: row.ID,
				Field:    "season",
				Ref:      row.SeasonRef.Int64,
			})
		}
		if seasonID == "" {
			seasonID, err = im.defaultSeason(ctx)
			if err != nil {
				return err
			}
		}
		recipe.SeasonID = seasonID

		categoryID, ok := categoryMap[row.CategoryRef.Int64]
		if row.CategoryRef.Valid && !ok {
			result.Dangling = append(result.Dangling, DanglingReference{
				LegacyID: row.ID,
				Field:    "category",
				Ref:      row.CategoryRef.Int64,
			})
		}
		if categoryID == "" {
			categoryID, err = im.defaultCategory(ctx)
			if err != nil {
				return err
			}
		}
		recipe.CategoryID = categoryID

		if err := im.store.CreateRecipe(ctx, recipe); err != nil {
			result.Skipped = append(result.Skipped, RowDiagnostic{
				LegacyID: row.ID,
				Reason:   "store rejected row",
				Err:      err,
			})
			im.logger.Warn("skipping legacy recipe",
				"legacy_id", row.ID,
				"name", row.Name.String,
				"error", err,
			)
			continue
		}
		result.RecipesImported++
	}
	return nil
}

// defaultSeason fetches or creates the synthesized default season.
func (im *Importer) defaultSeason(ctx context.Context) (string, error) {
	existing, err := im.store.GetSeasonByTitle(ctx, domain.DefaultSeasonTitle)
	if err == nil {
		return existing.ID, nil
	}
	if err != store.ErrNotFound {
		return "", err
	}

	season := &domain.Season{Title: domain.DefaultSeasonTitle}
	season.ID = id.MustGenerate("ssn")
	season.InitTimestamps()
	if err := im.store.CreateSeason(ctx, season); err != nil {
		return "", err
	}
	return season.ID, nil
}

// defaultCategory fetches or creates the synthesized default category.
func (im *Importer) defaultCategory(ctx context.Context) (string, error) {
	existing, err := im.store.GetCategoryByTitle(ctx, domain.DefaultCategoryTitle)
	if err == nil {
		return existing.ID, nil
	}
	if err != store.ErrNotFound {
		return "", err
	}

	category := &domain.Category{Title: domain.DefaultCategoryTitle}
	category.ID = id.MustGenerate("cat")
	category.InitTimestamps()
	if err := im.store.CreateCategory(ctx, category); err != nil {
		return "", err
	}
	return category.ID, nil
}
