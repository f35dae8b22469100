package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/fusionmeals/internal/model"
)

type PantryStore struct {
	db *sql.DB
}

func NewPantryStore(db *sql.DB) *PantryStore {
	return &PantryStore{db: db}
}

func scanPantryItem(scanner interface{ Scan(...any) error }) (*model.PantryItem, error) {
	var p model.PantryItem
	var purchase time.Time
	var expiry sql.NullTime
	var threshold sql.NullFloat64
	var notes, barcode sql.NullString
	err := scanner.Scan(&p.ID, &p.UserID, &p.Name, &p.Category, &p.Quantity, &p.Unit,
		&purchase, &expiry, &p.Status, &threshold, &notes, &barcode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.PurchaseDate = model.NewDate(purchase)
	if expiry.Valid {
		d := model.NewDate(expiry.Time)
		p.ExpiryDate = &d
	}
	if threshold.Valid {
		p.ThresholdQuantity = &threshold.Float64
	}
	if notes.Valid {
		p.Notes = &notes.String
	}
	if barcode.Valid {
		p.Barcode = &barcode.String
	}
	return &p, nil
}

const pantryCols = `id, user_id, name, category, quantity, unit, purchase_date, expiry_date, status, threshold_quantity, notes, barcode, created_at, updated_at`

func expiryArg(d *model.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

// Create inserts a pantry item. An empty ID is replaced with a new UUID.
func (s *PantryStore) Create(item model.PantryItem) (*model.PantryItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO pantry_items (id, user_id, name, category, quantity, unit, purchase_date, expiry_date,
		 status, threshold_quantity, notes, barcode, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.UserID, item.Name, item.Category, item.Quantity, item.Unit,
		item.PurchaseDate.Time, expiryArg(item.ExpiryDate), item.Status,
		item.ThresholdQuantity, item.Notes, item.Barcode, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert pantry item: %w", err)
	}
	return s.GetByID(item.UserID, item.ID)
}

func (s *PantryStore) GetByID(userID, id string) (*model.PantryItem, error) {
	row := s.db.QueryRow(`SELECT `+pantryCols+` FROM pantry_items WHERE id = ? AND user_id = ?`, id, userID)
	p, err := scanPantryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pantry item: %w", err)
	}
	return p, nil
}

// FindByName looks up an item by case-insensitive name.
func (s *PantryStore) FindByName(userID, name string) (*model.PantryItem, error) {
	row := s.db.QueryRow(
		`SELECT `+pantryCols+` FROM pantry_items WHERE user_id = ? AND name = ? COLLATE NOCASE
		 ORDER BY created_at LIMIT 1`,
		userID, name,
	)
	p, err := scanPantryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find pantry item by name: %w", err)
	}
	return p, nil
}

func (s *PantryStore) ListByUser(userID string) ([]model.PantryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+pantryCols+` FROM pantry_items WHERE user_id = ? ORDER BY name COLLATE NOCASE, created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pantry items: %w", err)
	}
	defer rows.Close()

	var items []model.PantryItem
	for rows.Next() {
		p, err := scanPantryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pantry item: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// Update overwrites every mutable column. Returns nil when the item does not
// belong to the user or does not exist.
func (s *PantryStore) Update(item model.PantryItem) (*model.PantryItem, error) {
	result, err := s.db.Exec(
		`UPDATE pantry_items SET name = ?, category = ?, quantity = ?, unit = ?, purchase_date = ?,
		 expiry_date = ?, status = ?, threshold_quantity = ?, notes = ?, barcode = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		item.Name, item.Category, item.Quantity, item.Unit, item.PurchaseDate.Time,
		expiryArg(item.ExpiryDate), item.Status, item.ThresholdQuantity, item.Notes, item.Barcode,
		time.Now().UTC(), item.ID, item.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("update pantry item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetByID(item.UserID, item.ID)
}

// SetStatus persists a recomputed status without touching updated_at.
func (s *PantryStore) SetStatus(userID, id string, status model.PantryStatus) error {
	_, err := s.db.Exec(`UPDATE pantry_items SET status = ? WHERE id = ? AND user_id = ?`, status, id, userID)
	if err != nil {
		return fmt.Errorf("set pantry status: %w", err)
	}
	return nil
}

// Delete removes an item and reports whether it existed.
func (s *PantryStore) Delete(userID, id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM pantry_items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete pantry item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
