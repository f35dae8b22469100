package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type PantryStatus string

const (
	PantryStatusAvailable  PantryStatus = "available"
	PantryStatusLow        PantryStatus = "low"
	PantryStatusExpired    PantryStatus = "expired"
	PantryStatusOutOfStock PantryStatus = "out_of_stock"
)

// Valid reports whether s is one of the known statuses.
func (s PantryStatus) Valid() bool {
	switch s {
	case PantryStatusAvailable, PantryStatusLow, PantryStatusExpired, PantryStatusOutOfStock:
		return true
	}
	return false
}

type PantryItem struct {
	ID                string       `json:"id"`
	UserID            string       `json:"user_id"`
	Name              string       `json:"name"`
	Category          string       `json:"category"`
	Quantity          float64      `json:"quantity"`
	Unit              string       `json:"unit"`
	PurchaseDate      Date         `json:"purchase_date"`
	ExpiryDate        *Date        `json:"expiry_date"`
	Status            PantryStatus `json:"status"`
	ThresholdQuantity *float64     `json:"threshold_quantity"`
	Notes             *string      `json:"notes"`
	Barcode           *string      `json:"barcode"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// PantryInventory is the full pantry of one user.
type PantryInventory struct {
	UserID      string       `json:"user_id"`
	Items       []PantryItem `json:"items"`
	LastUpdated time.Time    `json:"last_updated"`
}

const dateLayout = "2006-01-02"

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to midnight UTC of its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current UTC calendar day.
func Today() Date {
	return NewDate(time.Now().UTC())
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

// UnmarshalJSON accepts a plain date or a full RFC 3339 timestamp.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		*d = NewDate(t)
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	*d = NewDate(t)
	return nil
}
