package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// errUnavailable is the only failure detail sent to clients; the wrapped
// gateway error is logged.
const errUnavailable = "catalog unavailable"

// Handler exposes the aggregated catalog as JSON.
type Handler struct {
	service Service
	crateID string
	wallet  common.Address
}

// NewHandler serves crateID and wallet unless a request names its own.
func NewHandler(service Service, crateID string, wallet common.Address) *Handler {
	return &Handler{service: service, crateID: crateID, wallet: wallet}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/resale", h.resale)
		r.Get("/owned", h.owned)
	})
}

func (h *Handler) resale(w http.ResponseWriter, r *http.Request) {
	crateID := r.URL.Query().Get("crate")
	if crateID == "" {
		crateID = h.crateID
	}
	c, err := h.service.FetchResaleCatalog(r.Context(), crateID)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("crate", crateID).Msg("resale catalog")
		respond(w, http.StatusBadGateway, map[string]string{"error": errUnavailable})
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) owned(w http.ResponseWriter, r *http.Request) {
	owner := h.wallet
	if q := r.URL.Query().Get("wallet"); q != "" {
		if !common.IsHexAddress(q) {
			respond(w, http.StatusBadRequest, map[string]string{"error": "invalid wallet address"})
			return
		}
		owner = common.HexToAddress(q)
	}
	tokens, err := h.service.FetchOwnedCatalog(r.Context(), owner)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("owner", owner.Hex()).Msg("owned catalog")
		respond(w, http.StatusBadGateway, map[string]string{"error": errUnavailable})
		return
	}
	respond(w, http.StatusOK, tokens)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
