package handlers

import (
	"github.com/scanctum/scanctum-web/config"
	"github.com/scanctum/scanctum-web/pkg/interfaces"
	middleware "github.com/scanctum/scanctum-web/pkg/middlewares"
	"github.com/scanctum/scanctum-web/pkg/session"
	"github.com/scanctum/scanctum-web/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// AssetHandler serves the per-target asset summary page
type AssetHandler struct {
	Base
	backend interfaces.BackendServiceInterface
}

func NewAssetHandler(backend interfaces.BackendServiceInterface, cfg *config.Config, store session.Store, log *utils.Logger) *AssetHandler {
	return &AssetHandler{
		Base:    NewBase(cfg, store, log),
		backend: backend,
	}
}

// DisplayAssets renders one row per scanned target
func (h *AssetHandler) DisplayAssets(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)

	assets, err := h.backend.ListAssets(c.Context(), sess.Token)
	if err != nil {
		if IsUnauthorized(err) {
			return h.ForceLogout(c)
		}
		h.log.WithFunc().WithError(err).Error("Failed to fetch assets")
		assets = nil
	}

	return c.Render("assets", fiber.Map{
		"Title":  "Assets",
		"User":   sess.User,
		"Assets": assets,
	})
}
