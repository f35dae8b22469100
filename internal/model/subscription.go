package model

import "time"

const (
	SubscriptionBasic   = "basic"
	SubscriptionPremium = "premium"
)

// Preferences are the personalization settings fed into AI chef prompts.
type Preferences struct {
	Cuisines            []string `json:"cuisines"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	CookingSkill        string   `json:"cooking_skill"`
	HouseholdSize       int      `json:"household_size"`
	FavoriteIngredients []string `json:"favorite_ingredients"`
	DislikedIngredients []string `json:"disliked_ingredients"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Cuisines:            []string{"Italian", "Japanese", "Mexican"},
		DietaryRestrictions: []string{"Low Carb"},
		CookingSkill:        "intermediate",
		HouseholdSize:       2,
		FavoriteIngredients: []string{"chicken", "avocado", "salmon"},
		DislikedIngredients: []string{"cilantro", "blue cheese"},
	}
}

type Subscription struct {
	UserID               string      `json:"-"`
	Level                string      `json:"subscription_level"`
	Preferences          Preferences `json:"preferences"`
	ExpiryDate           time.Time   `json:"expiry_date"`
	StripeCustomerID     string      `json:"-"`
	StripeSubscriptionID string      `json:"-"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// IsPremium reports whether the subscription grants premium features at now.
func (s *Subscription) IsPremium(now time.Time) bool {
	return s != nil && s.Level == SubscriptionPremium && now.Before(s.ExpiryDate)
}
