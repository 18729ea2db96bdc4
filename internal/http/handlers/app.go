package handlers

import (
	"encoding/json"
	"net/http"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/providers/imagegen"
	"server/internal/providers/textgen"
	"server/internal/storage"
)

// App bundles the handler dependencies: both degradation pipelines, the
// conversation store, and the raster payload store.
type App struct {
	Logger        *infra.Logger
	Conversations domain.ConversationRepository
	TextPipeline  *textgen.Pipeline
	ImagePipeline *imagegen.Pipeline
	Files         *storage.FileStore
}

// NewApp wires the handler container.
func NewApp(logger *infra.Logger, conversations domain.ConversationRepository, text *textgen.Pipeline, image *imagegen.Pipeline, files *storage.FileStore) *App {
	return &App{
		Logger:        logger,
		Conversations: conversations,
		TextPipeline:  text,
		ImagePipeline: image,
		Files:         files,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, detail string) {
	a.json(w, code, map[string]string{"error": kind, "detail": detail})
}
