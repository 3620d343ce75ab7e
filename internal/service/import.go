package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cookbookapp/cookbook-server/internal/domain"
	domainerrors "github.com/cookbookapp/cookbook-server/internal/errors"
	"github.com/cookbookapp/cookbook-server/internal/extract"
	"github.com/cookbookapp/cookbook-server/internal/ocr"
)

// ImportState is the current stage of the import pipeline.
type ImportState string

const (
	StateIdle        ImportState = "idle"
	StateRecognizing ImportState = "recognizing"
	StateStructuring ImportState = "structuring"
	StateAssembling  ImportState = "assembling"
	StateDone        ImportState = "done"
	StateError       ImportState = "error"
)

// User-facing progress messages. The UI language is German throughout.
const (
	msgAnalyzing   = "Bild wird analysiert..."
	msgRecognizing = "Text wird erkannt..."
	msgProcessing  = "Rezept wird verarbeitet..."
	msgSaving      = "Rezept wird gespeichert..."
	msgDone        = "Fertig!"
)

// TextRecognizer extracts text from image bytes.
// Small interface for dependency injection (satisfied by ocr.Client).
type TextRecognizer interface {
	RecognizeText(ctx context.Context, imageBytes []byte) (string, error)
}

// RecipeStructurer turns free text into structured recipe data.
// Satisfied by extract.Client.
type RecipeStructurer interface {
	FromText(ctx context.Context, text string) (*extract.Recipe, error)
}

// ImportStatus is a point-in-time snapshot of the pipeline.
type ImportStatus struct {
	State        ImportState `json:"state"`
	IsProcessing bool        `json:"is_processing"`
	Progress     float64     `json:"progress"`
	Message      string      `json:"message"`
	ErrorVisible bool        `json:"error_visible"`
	ErrorMessage string      `json:"error_message"`
}

// ImportService runs the photo and text import pipelines. At most one
// import runs at a time; a second call while one is in flight fails with
// a busy error instead of queueing.
type ImportService struct {
	recognizer TextRecognizer
	structurer RecipeStructurer
	recipes    *RecipeService
	logger     *slog.Logger
	doneDelay  time.Duration

	mu           sync.Mutex
	inFlight     bool
	state        ImportState
	progress     float64
	message      string
	errorVisible bool
	errorMessage string
}

// NewImportService creates the import orchestrator. doneDelay is how long
// the finished state stays visible before resetting to idle.
func NewImportService(recognizer TextRecognizer, structurer RecipeStructurer, recipes *RecipeService, doneDelay time.Duration, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportService{
		recognizer: recognizer,
		structurer: structurer,
		recipes:    recipes,
		logger:     logger,
		doneDelay:  doneDelay,
		state:      StateIdle,
	}
}

// Status returns a snapshot of the pipeline state.
func (s *ImportService) Status() ImportStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ImportStatus{
		State:        s.state,
		IsProcessing: s.inFlight,
		Progress:     s.progress,
		Message:      s.message,
		ErrorVisible: s.errorVisible,
		ErrorMessage: s.errorMessage,
	}
}

// DismissError clears a visible error message.
func (s *ImportService) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorVisible = false
	s.errorMessage = ""
	if s.state == StateError {
		s.state = StateIdle
	}
}

// begin claims the single in-flight slot and clears any previous error.
func (s *ImportService) begin(state ImportState, progress float64, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return domainerrors.Busy("an import is already running")
	}
	s.inFlight = true
	s.state = state
	s.progress = progress
	s.message = message
	s.errorVisible = false
	s.errorMessage = ""
	return nil
}

func (s *ImportService) advance(state ImportState, progress float64, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.progress = progress
	s.message = message
}

// reset returns the pipeline to idle and releases the in-flight slot.
func (s *ImportService) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.state = StateIdle
	s.progress = 0
	s.message = ""
}

// fail abandons the attempt: no partial record is persisted, progress and
// message reset, and a user-facing message is derived from the error kind.
func (s *ImportService) fail(err error) {
	msg := userMessage(err)
	s.logger.Error("import failed", "error", err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.state = StateError
	s.progress = 0
	s.message = ""
	s.errorVisible = true
	s.errorMessage = msg
}

// finish shows the done state, waits out the display delay, then resets.
func (s *ImportService) finish() {
	s.advance(StateDone, 1.0, msgDone)
	time.Sleep(s.doneDelay)
	s.reset()
}

// RecipeFromPhoto runs the photo pipeline: recognize text in the image,
// structure it, assemble and persist a recipe with the photo attached.
// The created recipe is reported through onCreated before the done state.
func (s *ImportService) RecipeFromPhoto(ctx context.Context, imageData []byte, onCreated func(*domain.Recipe)) error {
	if err := s.begin(StateRecognizing, 0.0, msgAnalyzing); err != nil {
		return err
	}

	text, err := s.recognizer.RecognizeText(ctx, imageData)
	if err != nil {
		s.fail(err)
		return err
	}

	s.advance(StateStructuring, 0.3, msgRecognizing)

	extracted, err := s.structurer.FromText(ctx, text)
	if err != nil {
		s.fail(err)
		return err
	}

	s.advance(StateAssembling, 0.7, msgProcessing)
	s.advance(StateAssembling, 0.9, msgSaving)
	s.assemble(ctx, extracted, imageData, onCreated)
	s.finish()
	return nil
}

// RecipeFromText runs the text pipeline: structure the given text directly,
// then assemble and persist a recipe without a photo.
func (s *ImportService) RecipeFromText(ctx context.Context, text string, onCreated func(*domain.Recipe)) error {
	if err := s.begin(StateStructuring, 0.5, msgProcessing); err != nil {
		return err
	}

	extracted, err := s.structurer.FromText(ctx, text)
	if err != nil {
		s.fail(err)
		return err
	}

	s.advance(StateAssembling, 0.75, msgSaving)
	s.assemble(ctx, extracted, nil, onCreated)
	s.finish()
	return nil
}

// assemble builds and persists the recipe from an extraction result. A
// save failure at this point is logged but does not abort the pipeline:
// the attempt still runs to the done state. With nothing persisted there
// is no record to hand back, so onCreated fires only after a successful
// save and callers detect the gap by its absence.
func (s *ImportService) assemble(ctx context.Context, extracted *extract.Recipe, photo []byte, onCreated func(*domain.Recipe)) {
	ingredients := strings.Join(extracted.Ingredients, "\n")
	block := ingredients + "\n\n" + extracted.Instructions

	recipe, err := s.recipes.CreateRecipe(ctx, CreateRecipeRequest{
		Name:        extracted.Title,
		Ingredients: block,
		Portions:    extracted.Servings,
		Photo:       photo,
		Kinds:       int(domain.DefaultKind),
		Specials:    0,
	})
	if err != nil {
		s.logger.Warn("saving imported recipe failed", "name", extracted.Title, "error", err)
		return
	}
	if onCreated != nil {
		onCreated(recipe)
	}
}

// userMessage maps a pipeline error to the German message shown to the user.
func userMessage(err error) string {
	switch {
	case errors.Is(err, ocr.ErrInvalidImage):
		return "Das Bild konnte nicht verarbeitet werden. Bitte versuchen Sie es mit einem anderen Foto."
	case errors.Is(err, ocr.ErrUnsupportedFormat):
		return "Das Bildformat wird nicht unterstützt. Bitte verwenden Sie ein anderes Foto."
	case errors.Is(err, ocr.ErrNoTextFound):
		return "Kein Text im Bild gefunden. Bitte fotografieren Sie ein Rezept mit lesbarem Text."
	}

	var ocrErr *ocr.Error
	if errors.As(err, &ocrErr) {
		return fmt.Sprintf("Fehler bei der Texterkennung: %v", err)
	}

	var extractErr *extract.Error
	if errors.As(err, &extractErr) {
		if extractErr.Status != 0 {
			return fmt.Sprintf("Fehler beim Verarbeiten des Rezepts. Code: %d. Bitte überprüfen Sie Ihre Internetverbindung und versuchen Sie es erneut.", extractErr.Status)
		}
		return "Fehler beim Verarbeiten des Rezepts. Bitte überprüfen Sie Ihre Internetverbindung und versuchen Sie es erneut."
	}

	return fmt.Sprintf("Ein unbekannter Fehler ist aufgetreten: %v", err)
}
