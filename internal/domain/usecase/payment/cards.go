package payment

import (
	"context"
	"strings"

	errs "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"
)

// CatalogCard starts card registration for the caller
func (s *Service) CatalogCard(ctx context.Context, req usecase.CatalogCardRequest) (*gateway.CatalogCardResult, error) {
	userID, err := s.validator.ParseGatewayUserID(req.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateCatalogCard(req); err != nil {
		return nil, err
	}

	result, err := s.gateway.CatalogCard(ctx, gateway.CatalogCardRequest{
		CardID:        req.CardID,
		UserID:        userID,
		UserCellPhone: strings.TrimSpace(req.UserCellPhone),
		UserMail:      strings.TrimSpace(req.UserMail),
		ReturnURL:     strings.TrimSpace(req.ReturnURL),
	})
	if err != nil {
		fields := logFields(err)
		fields["user_id"] = userID
		s.logger.Warn("Card registration failed", fields)
		return nil, err
	}

	s.logger.Info("Card registration started", map[string]any{
		"user_id":    userID,
		"card_id":    req.CardID,
		"process_id": result.ProcessID,
	})
	return result, nil
}

// ListCards lists the caller's saved cards
func (s *Service) ListCards(ctx context.Context, userID string) ([]gateway.Card, error) {
	id, err := s.validator.ParseGatewayUserID(userID)
	if err != nil {
		return nil, err
	}

	cards, err := s.gateway.ListCards(ctx, id)
	if err != nil {
		fields := logFields(err)
		fields["user_id"] = id
		s.logger.Warn("Listing saved cards failed", fields)
		return nil, err
	}
	if cards == nil {
		cards = []gateway.Card{}
	}
	return cards, nil
}

// DeleteCard removes a saved card
func (s *Service) DeleteCard(ctx context.Context, userID, aliasToken string) error {
	id, err := s.validator.ParseGatewayUserID(userID)
	if err != nil {
		return err
	}
	aliasToken = strings.TrimSpace(aliasToken)
	if aliasToken == "" {
		return errs.NewValidationError("aliasToken", "is required")
	}

	if err := s.gateway.DeleteCard(ctx, id, aliasToken); err != nil {
		fields := logFields(err)
		fields["user_id"] = id
		s.logger.Warn("Deleting saved card failed", fields)
		return err
	}

	s.logger.Info("Saved card deleted", map[string]any{"user_id": id})
	return nil
}
