package purchase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/cargo-marketplace/internal/modules/cargo"
)

// Service relays buy-button clicks to the cargo gateway.
type Service interface {
	// Purchase submits the purchase and, on success only, appends a
	// confirmation to the session's log. There is no double-submit guard.
	Purchase(ctx context.Context, sessionID string, req Request) (*Confirmation, error)
	// Log returns the session's confirmations, oldest first.
	Log(ctx context.Context, sessionID string) ([]*Confirmation, error)
}

type service struct {
	gateway       cargo.Gateway
	repo          Repository
	explorerTxURL string
	now           func() time.Time
}

// NewService links confirmations to explorerTxURL followed by the tx hash.
func NewService(gateway cargo.Gateway, repo Repository, explorerTxURL string) Service {
	return &service{gateway: gateway, repo: repo, explorerTxURL: explorerTxURL, now: time.Now}
}

func (s *service) Purchase(ctx context.Context, sessionID string, req Request) (*Confirmation, error) {
	req.ResaleItemID = strings.TrimSpace(req.ResaleItemID)
	if req.ResaleItemID == "" {
		return nil, fmt.Errorf("%w: resaleid is required", ErrInvalidRequest)
	}
	price, err := decimal.NewFromString(string(req.Price))
	if err != nil || !price.IsInteger() || price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be a non-negative integer amount of wei", ErrInvalidRequest)
	}
	req.Price = cargo.Wei(price.String())

	logger := log.Ctx(ctx).With().
		Str("session", sessionID).
		Str("resale_item", req.ResaleItemID).
		Str("price", string(req.Price)).
		Logger()

	txHash, err := s.gateway.PurchaseResaleToken(ctx, req.ResaleItemID, req.Price)
	if err != nil {
		logger.Warn().Err(err).Msg("purchase rejected")
		return nil, fmt.Errorf("%w: %w", ErrPurchaseFailed, err)
	}

	link, err := url.JoinPath(s.explorerTxURL, txHash)
	if err != nil {
		return nil, fmt.Errorf("build explorer link: %w", err)
	}
	c := &Confirmation{
		ID:           uuid.New(),
		ResaleItemID: req.ResaleItemID,
		Price:        req.Price,
		TxHash:       txHash,
		Link:         link,
		SubmittedAt:  s.now(),
	}
	if err := s.repo.Append(ctx, sessionID, c); err != nil {
		return nil, err
	}

	logger.Info().Str("tx", txHash).Msg("purchase submitted")
	return c, nil
}

func (s *service) Log(ctx context.Context, sessionID string) ([]*Confirmation, error) {
	return s.repo.List(ctx, sessionID)
}
