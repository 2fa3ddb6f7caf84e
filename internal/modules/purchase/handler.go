package purchase

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/georgemunganga/cargo-marketplace/internal/modules/cargo"
	"github.com/georgemunganga/cargo-marketplace/internal/modules/render"
)

// Handler exposes the buy-button endpoint and the session's log.
type Handler struct {
	service  Service
	sessions *Sessions
}

func NewHandler(service Service, sessions *Sessions) *Handler {
	return &Handler{service: service, sessions: sessions}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/purchase", func(r chi.Router) {
		r.Post("/", h.purchase)
		r.Get("/log", h.history)
	})
}

// purchase only serves same-origin requests carrying a session issued by
// the page.
func (h *Handler) purchase(w http.ResponseWriter, r *http.Request) {
	if crossSite(r) {
		log.Ctx(r.Context()).Warn().
			Str("origin", r.Header.Get("Origin")).
			Str("fetch_site", r.Header.Get("Sec-Fetch-Site")).
			Msg("cross-site purchase refused")
		respond(w, http.StatusForbidden, map[string]string{"error": "cross-site request"})
		return
	}
	sessionID, err := h.sessions.Verify(r)
	if err != nil {
		respond(w, http.StatusForbidden, map[string]string{"error": ErrNoSession.Error()})
		return
	}
	req, err := decodeRequest(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	c, err := h.service.Purchase(r.Context(), sessionID, req)
	switch {
	case errors.Is(err, ErrInvalidRequest):
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	case err != nil:
		respond(w, http.StatusBadGateway, map[string]string{"alert": AlertMessage})
		return
	}

	line, err := render.Confirmation(c.Link)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("render confirmation")
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeHTML(w, http.StatusOK, string(line))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.sessions.Resolve(w, r)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	markup, err := LogMarkup(r.Context(), h.service, sessionID)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeHTML(w, http.StatusOK, markup)
}

// LogMarkup renders every confirmation of the session, oldest first.
func LogMarkup(ctx context.Context, service Service, sessionID string) (string, error) {
	entries, err := service.Log(ctx, sessionID)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, c := range entries {
		line, err := render.Confirmation(c.Link)
		if err != nil {
			return "", err
		}
		b.WriteString(string(line))
	}
	return b.String(), nil
}

// crossSite reports whether the browser says the request came from another
// site, by Sec-Fetch-Site or by an Origin whose host differs from ours.
func crossSite(r *http.Request) bool {
	switch r.Header.Get("Sec-Fetch-Site") {
	case "", "same-origin", "none":
	default:
		return true
	}
	if origin := r.Header.Get("Origin"); origin != "" {
		u, err := url.Parse(origin)
		if err != nil || u.Host != r.Host {
			return true
		}
	}
	return false
}

// decodeRequest accepts either a JSON body or form fields named after the
// button's data attributes.
func decodeRequest(r *http.Request) (Request, error) {
	var req Request
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.ResaleItemID = r.PostForm.Get("resaleid")
	req.Price = cargo.Wei(r.PostForm.Get("price"))
	return req, nil
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
