// Package stripe sells the premium tier through Stripe Checkout and turns
// Stripe webhook events into subscription level changes.
package stripe

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	checksession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/webhook"
)

// ErrNotConfigured is returned when no secret key or price is set.
var ErrNotConfigured = errors.New("stripe billing not configured")

// gracePeriod keeps premium active briefly past the paid period while
// renewals settle.
const gracePeriod = 3 * 24 * time.Hour

type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceID       string
	SuccessURL    string
	CancelURL     string
}

type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	if cfg.SecretKey != "" {
		stripe.Key = cfg.SecretKey
	}
	return &Client{cfg: cfg}
}

// Configured reports whether checkout sessions can be created.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.SecretKey != "" && c.cfg.PriceID != ""
}

// WebhookConfigured reports whether webhook signatures can be verified.
func (c *Client) WebhookConfigured() bool {
	return c != nil && c.cfg.WebhookSecret != ""
}

// CreateCustomer creates a Stripe customer tagged with the user id.
func (c *Client) CreateCustomer(email, userID string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.AddMetadata("user_id", userID)
	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession starts a premium subscription checkout for userID
// and returns the hosted checkout URL.
func (c *Client) CreateCheckoutSession(customerID, userID string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	params := &stripe.CheckoutSessionParams{
		Customer:          stripe.String(customerID),
		ClientReferenceID: stripe.String(userID),
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.cfg.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"user_id": userID},
		},
		AllowPromotionCodes: stripe.Bool(true),
		SuccessURL:          stripe.String(c.cfg.SuccessURL),
		CancelURL:           stripe.String(c.cfg.CancelURL),
	}
	sess, err := checksession.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// ConstructWebhookEvent verifies the signature and returns the parsed event.
func (c *Client) ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	if !c.WebhookConfigured() {
		return stripe.Event{}, ErrNotConfigured
	}
	return webhook.ConstructEvent(payload, sigHeader, c.cfg.WebhookSecret)
}

// Update is the subscription change an event implies. UserID is only known
// for checkout completions; later events are matched by SubscriptionID.
type Update struct {
	UserID         string
	CustomerID     string
	SubscriptionID string
	Premium        bool
	Expiry         time.Time
}

// SubscriptionUpdate maps a webhook event onto an Update. Events that do not
// change the premium level yield nil.
func SubscriptionUpdate(event stripe.Event) (*Update, error) {
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("unmarshal checkout session: %w", err)
		}
		if sess.ClientReferenceID == "" || sess.Subscription == nil {
			return nil, nil
		}
		u := &Update{
			UserID:         sess.ClientReferenceID,
			SubscriptionID: sess.Subscription.ID,
			Premium:        true,
			// the first invoice.paid sets the real period end
			Expiry: time.Unix(event.Created, 0).UTC().AddDate(0, 1, 0).Add(gracePeriod),
		}
		if sess.Customer != nil {
			u.CustomerID = sess.Customer.ID
		}
		return u, nil

	case "invoice.paid":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return nil, fmt.Errorf("unmarshal invoice: %w", err)
		}
		subID := subscriptionIDFromInvoice(invoice)
		if subID == "" {
			return nil, nil
		}
		return &Update{
			SubscriptionID: subID,
			Premium:        true,
			Expiry:         time.Unix(invoicePeriodEnd(invoice), 0).UTC().Add(gracePeriod),
		}, nil

	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("unmarshal subscription: %w", err)
		}
		active := event.Type == "customer.subscription.updated" &&
			(sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing)
		u := &Update{SubscriptionID: sub.ID, Premium: active}
		if active {
			u.Expiry = time.Unix(subscriptionPeriodEnd(sub), 0).UTC().Add(gracePeriod)
		} else {
			u.Expiry = time.Unix(event.Created, 0).UTC()
		}
		return u, nil
	}
	return nil, nil
}

func subscriptionIDFromInvoice(invoice stripe.Invoice) string {
	if invoice.Parent != nil &&
		invoice.Parent.SubscriptionDetails != nil &&
		invoice.Parent.SubscriptionDetails.Subscription != nil {
		return invoice.Parent.SubscriptionDetails.Subscription.ID
	}
	return ""
}

// invoicePeriodEnd prefers the line item period, which covers the paid
// subscription interval.
func invoicePeriodEnd(invoice stripe.Invoice) int64 {
	end := invoice.PeriodEnd
	if invoice.Lines != nil {
		for _, line := range invoice.Lines.Data {
			if line.Period != nil && line.Period.End > end {
				end = line.Period.End
			}
		}
	}
	return end
}

func subscriptionPeriodEnd(sub stripe.Subscription) int64 {
	var end int64
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item.CurrentPeriodEnd > end {
				end = item.CurrentPeriodEnd
			}
		}
	}
	return end
}
