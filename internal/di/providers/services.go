package providers

import (
	"github.com/samber/do/v2"

	"github.com/cookbookapp/cookbook-server/internal/config"
	"github.com/cookbookapp/cookbook-server/internal/logger"
	"github.com/cookbookapp/cookbook-server/internal/service"
)

// ProvideLookupService provides the season/category lookup service.
func ProvideLookupService(i do.Injector) (*service.LookupService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLookupService(storeHandle.Store, log.Logger), nil
}

// ProvideRecipeService provides the recipe CRUD service.
func ProvideRecipeService(i do.Injector) (*service.RecipeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	lookups := do.MustInvoke[*service.LookupService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecipeService(storeHandle.Store, lookups, log.Logger), nil
}

// ProvideImportService provides the OCR and extraction import pipeline.
func ProvideImportService(i do.Injector) (*service.ImportService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	ocrHandle := do.MustInvoke[*OCRClientHandle](i)
	extractHandle := do.MustInvoke[*ExtractClientHandle](i)
	recipes := do.MustInvoke[*service.RecipeService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewImportService(ocrHandle.Client, extractHandle.Client, recipes, cfg.Import.DoneDelay, log.Logger), nil
}
