package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/providers/imagegen"
)

type heroImageRequest struct {
	SourceImage   string   `json:"source_image"`
	Title         string   `json:"title"`
	SellingPoints []string `json:"selling_points"`
	Atmosphere    string   `json:"atmosphere"`
	Size          string   `json:"size"`
}

// ComposeHeroImage produces the hero product image: one remote attempt, then
// the local raster fallback. An error reaches the client only when the
// source image itself cannot be loaded.
func (a *App) ComposeHeroImage(w http.ResponseWriter, r *http.Request) {
	var req heroImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.SourceImage) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "source_image required")
		return
	}

	overlay := imagegen.OverlayText{
		Title:         req.Title,
		SellingPoints: req.SellingPoints,
		Atmosphere:    req.Atmosphere,
	}
	hero, err := a.ImagePipeline.Produce(r.Context(), domain.CompositionRequest{
		SourceImageRef:  req.SourceImage,
		InstructionText: buildHeroInstruction(req),
		SizeTag:         req.Size,
	}, overlay)
	if err != nil {
		if errors.Is(err, domain.ErrSourceImageLoad) {
			a.error(w, http.StatusBadGateway, "source_image_unavailable", "source image could not be loaded")
			return
		}
		a.Logger.Error().Err(err).Msg("handlers: hero image composition")
		a.error(w, http.StatusInternalServerError, "internal", "hero image composition failed")
		return
	}

	if hero.Remote() {
		a.json(w, http.StatusOK, map[string]string{"url": hero.URL})
		return
	}
	key, err := a.Files.Write(r.Context(), fmt.Sprintf("hero/%s.png", uuid.NewString()), hero.Data)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: store hero image")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store hero image")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"url": a.Files.URL(key)})
}

// buildHeroInstruction phrases the composition brief sent to the remote
// image model.
func buildHeroInstruction(req heroImageRequest) string {
	parts := []string{"将商品图改造为精美的电商主图，突出商品主体，背景干净高级。"}
	if t := strings.TrimSpace(req.Title); t != "" {
		parts = append(parts, "商品："+t+"。")
	}
	if len(req.SellingPoints) > 0 {
		parts = append(parts, "卖点："+strings.Join(req.SellingPoints, "、")+"。")
	}
	if atm := strings.TrimSpace(req.Atmosphere); atm != "" {
		parts = append(parts, "氛围："+atm+"。")
	}
	return strings.Join(parts, " ")
}
