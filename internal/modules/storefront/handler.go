package storefront

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/georgemunganga/cargo-marketplace/internal/modules/cargo"
	"github.com/georgemunganga/cargo-marketplace/internal/modules/catalog"
	"github.com/georgemunganga/cargo-marketplace/internal/modules/purchase"
	"github.com/georgemunganga/cargo-marketplace/internal/modules/render"
)

//go:embed assets
var assetFS embed.FS

// Options is what the page shows: which crate, whose tokens, which network.
type Options struct {
	CrateID string
	Wallet  common.Address
	Network string
}

// Handler serves the storefront page and its static assets.
type Handler struct {
	gateway   cargo.Gateway
	catalog   catalog.Service
	purchases purchase.Service
	sessions  *purchase.Sessions
	opts      Options
}

func NewHandler(gateway cargo.Gateway, catalogs catalog.Service, purchases purchase.Service, sessions *purchase.Sessions, opts Options) *Handler {
	return &Handler{
		gateway:   gateway,
		catalog:   catalogs,
		purchases: purchases,
		sessions:  sessions,
		opts:      opts,
	}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	assets, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic(err) // the directory is embedded at build time
	}
	r.Get("/", h.index)
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assets))))
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	// An unreachable gateway is shown the same way as a missing provider.
	enabled, err := h.gateway.Enable(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("cargo enable failed")
		enabled = false
	}
	data := render.PageData{Network: h.opts.Network, Enabled: enabled}

	sessionID, err := h.sessions.Resolve(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	history, err := purchase.LogMarkup(ctx, h.purchases, sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data.Log = template.HTML(history)

	if enabled {
		snap, err := h.catalog.Load(ctx, h.opts.CrateID, h.opts.Wallet)
		if err != nil {
			logger.Error().Err(err).Str("crate", h.opts.CrateID).Msg("load storefront catalog")
			http.Error(w, "catalog unavailable", http.StatusInternalServerError)
			return
		}
		if data.Catalog, err = render.Catalog(snap.Resale.Contracts, snap.Resale.Items); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if data.Owned, err = render.OwnedTokens(snap.Owned); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	page, err := render.Page(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}
