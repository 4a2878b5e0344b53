package payment

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/refund"

	"sideways_back_end/internal/orders"
)

// StripeGateway capture les paiements côté serveur : PaymentIntent confirmé
// immédiatement, sans redirection possible. La clé d'idempotence Stripe est
// celle du workflow, un replay du même checkout ne débite qu'une fois.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

var _ orders.Gateway = (*StripeGateway)(nil)

func (g *StripeGateway) Charge(ctx context.Context, p orders.ChargeParams) (*orders.ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(p.AmountMinor),
		Currency:      stripe.String(p.Currency),
		PaymentMethod: stripe.String(p.PaymentMethod),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
		Metadata: p.Metadata,
	}
	params.Context = ctx
	params.SetIdempotencyKey(p.IdempotencyKey)

	intent, err := paymentintent.New(params)
	if err != nil {
		// Un refus de carte est un résultat, pas une panne du prestataire.
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			log.Printf("💳 Carte refusée: %s", stripeErr.Code)
			return &orders.ChargeResult{
				Status:        "failed",
				FailureReason: string(stripeErr.Code),
			}, nil
		}
		return nil, fmt.Errorf("création PaymentIntent: %w", err)
	}

	result := &orders.ChargeResult{
		Status:        string(intent.Status),
		TransactionID: intent.ID,
	}
	if intent.LastPaymentError != nil {
		result.FailureReason = string(intent.LastPaymentError.Code)
	}

	log.Printf("💳 PaymentIntent %s : %s (%d centavos)", intent.ID, intent.Status, p.AmountMinor)
	return result, nil
}

func (g *StripeGateway) Refund(ctx context.Context, transactionID string, amountMinor int64) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(transactionID),
		Amount:        stripe.Int64(amountMinor),
		Reason:        stripe.String("requested_by_customer"),
	}
	params.Context = ctx

	r, err := refund.New(params)
	if err != nil {
		return fmt.Errorf("remboursement %s: %w", transactionID, err)
	}
	log.Printf("💰 Remboursement Stripe créé: %s pour %s", r.ID, transactionID)
	return nil
}
