package providers

import (
	"github.com/samber/do/v2"

	"github.com/cookbookapp/cookbook-server/internal/config"
	"github.com/cookbookapp/cookbook-server/internal/extract"
	"github.com/cookbookapp/cookbook-server/internal/logger"
	"github.com/cookbookapp/cookbook-server/internal/ocr"
)

// OCRClientHandle wraps the text recognition client.
type OCRClientHandle struct {
	*ocr.Client
}

// ProvideOCRClient provides the text recognition client.
func ProvideOCRClient(i do.Injector) (*OCRClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := ocr.NewClient(cfg.Vision.BaseURL, cfg.Vision.APIKey, cfg.Vision.Timeout, log.Logger)

	if cfg.Vision.APIKey == "" {
		log.Warn("No vision API key configured - photo import will fail")
	}

	return &OCRClientHandle{Client: client}, nil
}

// ExtractClientHandle wraps the structured extraction client.
type ExtractClientHandle struct {
	*extract.Client
}

// ProvideExtractClient provides the structured extraction client.
func ProvideExtractClient(i do.Injector) (*ExtractClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := extract.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Timeout, log.Logger)

	if cfg.OpenAI.APIKey == "" {
		log.Warn("No OpenAI API key configured - import features will fail")
	}

	return &ExtractClientHandle{Client: client}, nil
}
