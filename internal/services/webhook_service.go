package services

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"fiesta/internal/models/request_models"
	"fiesta/internal/payments"
	"fiesta/internal/platform"
	"fiesta/internal/txprocess"
)

const (
	stripeEventIdentityVerified = "identity.verification_session.verified"

	shippoEventTrackUpdated = "track_updated"
	shippoStatusTransit     = "TRANSIT"
	shippoStatusDelivered   = "DELIVERED"
)

type WebhookServiceInterface interface {
	// HandleStripeWebhook verifies the payload signature and dispatches the
	// event. A signature mismatch is the only error the caller should turn
	// into a non-2xx; anything after a valid signature is acked so the
	// provider does not keep retrying a payload we already logged.
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error
	HandleShippoWebhook(ctx context.Context, update request_models.ShippoTrackingUpdate) error
}

type WebhookService struct {
	gateway       payments.Gateway
	marketplace   platform.Client
	signingSecret string
	logger        *zap.SugaredLogger
}

func NewWebhookService(
	gateway payments.Gateway,
	marketplace platform.Client,
	signingSecret string,
	logger *zap.SugaredLogger,
) WebhookServiceInterface {
	return &WebhookService{
		gateway:       gateway,
		marketplace:   marketplace,
		signingSecret: signingSecret,
		logger:        logger,
	}
}

func (s *WebhookService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.signingSecret)
	if err != nil {
		s.logger.Warnw("stripe webhook signature verification failed", "error", err)
		return err
	}

	switch event.Type {
	case stripeEventIdentityVerified:
		if err := s.processIdentityVerified(ctx, event); err != nil {
			// Signature checked out, so ack and rely on logs; a retry storm
			// of the same broken payload helps nobody.
			s.logger.Errorw("identity verification event failed", "event_id", event.ID, "error", err)
		}
	default:
		s.logger.Debugw("ignoring stripe event", "type", event.Type, "event_id", event.ID)
	}
	return nil
}

func (s *WebhookService) processIdentityVerified(ctx context.Context, event stripe.Event) error {
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(event.Data.Raw, &payload); err != nil {
		return err
	}

	session, err := s.gateway.GetVerificationSession(ctx, payload.ID)
	if err != nil {
		return err
	}
	if session.UserID == "" {
		s.logger.Warnw("verification session has no user reference", "session_id", session.ID)
		return nil
	}

	return s.marketplace.UpdateUserMetadata(ctx, session.UserID, map[string]any{
		"identityVerified": true,
	})
}

func (s *WebhookService) HandleShippoWebhook(ctx context.Context, update request_models.ShippoTrackingUpdate) error {
	if update.Event != shippoEventTrackUpdated {
		return nil
	}
	return s.ProcessTrackingUpdate(ctx, update.Data.Metadata, update.Data.TrackingStatus.Status)
}

// ProcessTrackingUpdate advances a purchase transaction from a carrier status.
// Stale or out-of-order tracking updates are expected (carriers replay scans);
// an update whose transition is not legal from the current state is skipped,
// not failed, so the carrier stops retrying it.
func (s *WebhookService) ProcessTrackingUpdate(ctx context.Context, txID, status string) error {
	var transition txprocess.Transition
	switch status {
	case shippoStatusTransit:
		transition = txprocess.TransitionOperatorMarkShipped
	case shippoStatusDelivered:
		transition = txprocess.TransitionOperatorMarkDelivered
	default:
		return nil
	}
	if txID == "" {
		s.logger.Warnw("tracking update carries no transaction reference", "status", status)
		return nil
	}

	tx, err := s.marketplace.ShowTransaction(ctx, txID)
	if err != nil {
		return err
	}

	current, err := txprocess.StateAfter(tx.ProcessName, tx.LastTransition)
	if err != nil {
		return err
	}
	if _, err := txprocess.NextState(tx.ProcessName, current, transition); err != nil {
		s.logger.Infow("skipping tracking update not applicable to current state",
			"tx_id", txID, "state", current, "status", status)
		return nil
	}

	return s.marketplace.Transition(ctx, txID, transition, nil)
}
