package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/fusionmeals/internal/model"
)

// DefaultSubscriptionTerm is how long a newly created subscription row lasts.
const DefaultSubscriptionTerm = 30 * 24 * time.Hour

type SubscriptionStore struct {
	db *sql.DB
}

func NewSubscriptionStore(db *sql.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

func scanSubscription(scanner interface{ Scan(...any) error }) (*model.Subscription, error) {
	var sub model.Subscription
	var prefs string
	var customerID, subscriptionID sql.NullString
	err := scanner.Scan(&sub.UserID, &sub.Level, &prefs, &sub.ExpiryDate, &customerID, &subscriptionID, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sub.Preferences = model.DefaultPreferences()
	if prefs != "" && prefs != "{}" {
		if err := json.Unmarshal([]byte(prefs), &sub.Preferences); err != nil {
			return nil, fmt.Errorf("decode preferences: %w", err)
		}
	}
	sub.StripeCustomerID = customerID.String
	sub.StripeSubscriptionID = subscriptionID.String
	return &sub, nil
}

const subscriptionCols = `user_id, level, preferences, expiry_date, stripe_customer_id, stripe_subscription_id, updated_at`

func (s *SubscriptionStore) Get(userID string) (*model.Subscription, error) {
	row := s.db.QueryRow(`SELECT `+subscriptionCols+` FROM subscriptions WHERE user_id = ?`, userID)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

// GetOrCreate returns the user's subscription, creating a basic one with
// default preferences when none exists.
func (s *SubscriptionStore) GetOrCreate(userID string) (*model.Subscription, error) {
	now := time.Now().UTC()
	prefs, err := json.Marshal(model.DefaultPreferences())
	if err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR IGNORE INTO subscriptions (user_id, level, preferences, expiry_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, model.SubscriptionBasic, string(prefs), now.Add(DefaultSubscriptionTerm), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return s.Get(userID)
}

// Update sets level, preferences and expiry for a user, creating the row if needed.
func (s *SubscriptionStore) Update(userID, level string, prefs model.Preferences, expiry time.Time) (*model.Subscription, error) {
	data, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}
	now := time.Now().UTC()
	_, err = s.db.Exec(
		`INSERT INTO subscriptions (user_id, level, preferences, expiry_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   level = excluded.level, preferences = excluded.preferences,
		   expiry_date = excluded.expiry_date, updated_at = excluded.updated_at`,
		userID, level, string(data), expiry.UTC(), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("update subscription: %w", err)
	}
	return s.Get(userID)
}

func (s *SubscriptionStore) SetStripeCustomer(userID, customerID string) error {
	_, err := s.db.Exec(
		`UPDATE subscriptions SET stripe_customer_id = ?, updated_at = ? WHERE user_id = ?`,
		customerID, time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("set stripe customer: %w", err)
	}
	return nil
}

// ActivateStripe marks the user premium until expiry and links the Stripe subscription.
func (s *SubscriptionStore) ActivateStripe(userID, customerID, subscriptionID string, expiry time.Time) error {
	if _, err := s.GetOrCreate(userID); err != nil {
		return err
	}
	_, err := s.db.Exec(
		`UPDATE subscriptions SET level = ?, stripe_customer_id = ?, stripe_subscription_id = ?,
		 expiry_date = ?, updated_at = ? WHERE user_id = ?`,
		model.SubscriptionPremium, customerID, subscriptionID, expiry.UTC(), time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("activate stripe subscription: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) GetByStripeSubscriptionID(subscriptionID string) (*model.Subscription, error) {
	row := s.db.QueryRow(`SELECT `+subscriptionCols+` FROM subscriptions WHERE stripe_subscription_id = ?`, subscriptionID)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription by stripe id: %w", err)
	}
	return sub, nil
}

// SetLevelByStripeSubscription updates the level of the row linked to a
// Stripe subscription. Unknown subscription ids are ignored.
func (s *SubscriptionStore) SetLevelByStripeSubscription(subscriptionID, level string, expiry time.Time) error {
	_, err := s.db.Exec(
		`UPDATE subscriptions SET level = ?, expiry_date = ?, updated_at = ? WHERE stripe_subscription_id = ?`,
		level, expiry.UTC(), time.Now().UTC(), subscriptionID,
	)
	if err != nil {
		return fmt.Errorf("set level by stripe subscription: %w", err)
	}
	return nil
}
