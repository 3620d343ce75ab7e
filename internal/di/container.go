// Package di provides dependency injection configuration for the CookBook server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/cookbookapp/cookbook-server/internal/config"
	"github.com/cookbookapp/cookbook-server/internal/di/providers"
	"github.com/cookbookapp/cookbook-server/internal/logger"
	"github.com/cookbookapp/cookbook-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Outbound clients
	do.Provide(injector, providers.ProvideOCRClient)
	do.Provide(injector, providers.ProvideExtractClient)

	// Business services
	do.Provide(injector, providers.ProvideLookupService)
	do.Provide(injector, providers.ProvideRecipeService)
	do.Provide(injector, providers.ProvideImportService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)

	_ = do.MustInvoke[*providers.OCRClientHandle](injector)
	_ = do.MustInvoke[*providers.ExtractClientHandle](injector)

	_ = do.MustInvoke[*service.LookupService](injector)
	_ = do.MustInvoke[*service.RecipeService](injector)
	_ = do.MustInvoke[*service.ImportService](injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
