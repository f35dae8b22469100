package pantry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/fusionmeals/internal/model"
)

var (
	ErrUnknownUnit   = errors.New("unknown unit")
	ErrInvalidStatus = errors.New("invalid status")
	ErrNameRequired  = errors.New("name is required")
)

// DefaultCategory is assigned to items added without a category.
const DefaultCategory = "Pantry"

// Store is the persistence the pantry service needs.
type Store interface {
	Create(item model.PantryItem) (*model.PantryItem, error)
	GetByID(userID, id string) (*model.PantryItem, error)
	FindByName(userID, name string) (*model.PantryItem, error)
	ListByUser(userID string) ([]model.PantryItem, error)
	Update(item model.PantryItem) (*model.PantryItem, error)
	SetStatus(userID, id string, status model.PantryStatus) error
	Delete(userID, id string) (bool, error)
}

type AddRequest struct {
	Name              string             `json:"name" validate:"required"`
	Category          string             `json:"category"`
	Quantity          float64            `json:"quantity" validate:"gte=0"`
	Unit              string             `json:"unit"`
	PurchaseDate      *model.Date        `json:"purchase_date"`
	ExpiryDate        *model.Date        `json:"expiry_date"`
	Status            model.PantryStatus `json:"status"`
	ThresholdQuantity *float64           `json:"threshold_quantity" validate:"omitempty,gte=0"`
	Notes             *string            `json:"notes"`
	Barcode           *string            `json:"barcode"`
}

// UpdateRequest carries a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	ID                string             `json:"id" validate:"required"`
	Name              *string            `json:"name"`
	Category          *string            `json:"category"`
	Quantity          *float64           `json:"quantity" validate:"omitempty,gte=0"`
	Unit              *string            `json:"unit"`
	PurchaseDate      *model.Date        `json:"purchase_date"`
	ExpiryDate        *model.Date        `json:"expiry_date"`
	Status            model.PantryStatus `json:"status"`
	ThresholdQuantity *float64           `json:"threshold_quantity" validate:"omitempty,gte=0"`
	Notes             *string            `json:"notes"`
	Barcode           *string            `json:"barcode"`
}

// Purchase is one bought grocery line applied to the pantry.
type Purchase struct {
	Name         string             `json:"name" validate:"required"`
	Quantity     *float64           `json:"quantity" validate:"omitempty,gte=0"`
	Unit         string             `json:"unit"`
	Category     string             `json:"category"`
	PurchaseDate *model.Date        `json:"purchase_date"`
	ExpiryDate   *model.Date        `json:"expiry_date"`
	Status       model.PantryStatus `json:"status"`
}

// Change records a mutation made while applying purchases.
type Change struct {
	Created bool
	Item    model.PantryItem
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) today() time.Time {
	return startOfDay(s.now())
}

// refresh applies the status recompute to an item read from the store and
// persists the result when it changed.
func (s *Service) refresh(item *model.PantryItem) error {
	status := Resolve(item.Status, ComputeStatus(*item, s.today()))
	if status == item.Status {
		return nil
	}
	if err := s.store.SetStatus(item.UserID, item.ID, status); err != nil {
		return err
	}
	item.Status = status
	return nil
}

// Inventory returns all of a user's items with freshly computed statuses.
func (s *Service) Inventory(userID string) (*model.PantryInventory, error) {
	items, err := s.store.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	last := time.Time{}
	for i := range items {
		if err := s.refresh(&items[i]); err != nil {
			return nil, err
		}
		if items[i].UpdatedAt.After(last) {
			last = items[i].UpdatedAt
		}
	}
	if items == nil {
		items = []model.PantryItem{}
	}
	if last.IsZero() {
		last = s.now().UTC()
	}
	return &model.PantryInventory{UserID: userID, Items: items, LastUpdated: last}, nil
}

// Expired returns the user's items currently marked expired.
func (s *Service) Expired(userID string) ([]model.PantryItem, error) {
	return s.filter(userID, model.PantryStatusExpired)
}

// LowStock returns the user's items currently marked low.
func (s *Service) LowStock(userID string) ([]model.PantryItem, error) {
	return s.filter(userID, model.PantryStatusLow)
}

func (s *Service) filter(userID string, status model.PantryStatus) ([]model.PantryItem, error) {
	inv, err := s.Inventory(userID)
	if err != nil {
		return nil, err
	}
	out := []model.PantryItem{}
	for _, it := range inv.Items {
		if it.Status == status {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *Service) Add(userID string, req AddRequest) (*model.PantryItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	unit, ok := NormalizeUnit(req.Unit)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownUnit, req.Unit)
	}
	if req.Status != "" && !req.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	item := model.PantryItem{
		UserID:            userID,
		Name:              name,
		Category:          strings.TrimSpace(req.Category),
		Quantity:          req.Quantity,
		Unit:              unit,
		PurchaseDate:      model.NewDate(s.today()),
		ExpiryDate:        req.ExpiryDate,
		ThresholdQuantity: req.ThresholdQuantity,
		Notes:             req.Notes,
		Barcode:           req.Barcode,
	}
	if item.Category == "" {
		item.Category = DefaultCategory
	}
	if req.PurchaseDate != nil {
		item.PurchaseDate = *req.PurchaseDate
	}
	item.Status = req.Status
	if item.Status == "" {
		item.Status = ComputeStatus(item, s.today())
	}

	created, err := s.store.Create(item)
	if err != nil {
		return nil, err
	}
	return created, s.refresh(created)
}

// Update applies a partial update. It returns nil when the item does not exist.
func (s *Service) Update(userID string, req UpdateRequest) (*model.PantryItem, error) {
	item, err := s.store.GetByID(userID, req.ID)
	if err != nil || item == nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		item.Name = name
	}
	if req.Category != nil {
		item.Category = strings.TrimSpace(*req.Category)
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		unit, ok := NormalizeUnit(*req.Unit)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownUnit, *req.Unit)
		}
		item.Unit = unit
	}
	if req.PurchaseDate != nil {
		item.PurchaseDate = *req.PurchaseDate
	}
	if req.ExpiryDate != nil {
		item.ExpiryDate = req.ExpiryDate
	}
	if req.ThresholdQuantity != nil {
		item.ThresholdQuantity = req.ThresholdQuantity
	}
	if req.Notes != nil {
		item.Notes = req.Notes
	}
	if req.Barcode != nil {
		item.Barcode = req.Barcode
	}

	switch {
	case req.Status == "":
		item.Status = ComputeStatus(*item, s.today())
	case req.Status.Valid():
		item.Status = req.Status
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	updated, err := s.store.Update(*item)
	if err != nil || updated == nil {
		return nil, err
	}
	return updated, s.refresh(updated)
}

// Remove deletes an item and reports whether it existed.
func (s *Service) Remove(userID, id string) (bool, error) {
	return s.store.Delete(userID, id)
}

// ApplyPurchases folds bought groceries into the pantry. Items matching an
// existing name (case-insensitive) gain quantity and a fresh purchase date;
// others are created. Unknown units fall back to DefaultUnit.
func (s *Service) ApplyPurchases(userID string, purchases []Purchase) ([]Change, error) {
	var changes []Change
	for _, p := range purchases {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return changes, ErrNameRequired
		}
		qty := 1.0
		if p.Quantity != nil {
			qty = *p.Quantity
		}
		status := p.Status
		if !status.Valid() {
			status = ""
		}

		existing, err := s.store.FindByName(userID, name)
		if err != nil {
			return changes, err
		}
		if existing != nil {
			q := existing.Quantity + qty
			purchased := model.NewDate(s.today())
			if p.PurchaseDate != nil {
				purchased = *p.PurchaseDate
			}
			updated, err := s.Update(userID, UpdateRequest{
				ID:           existing.ID,
				Quantity:     &q,
				PurchaseDate: &purchased,
				ExpiryDate:   p.ExpiryDate,
				Status:       status,
			})
			if err != nil {
				return changes, err
			}
			if updated != nil {
				changes = append(changes, Change{Item: *updated})
			}
			continue
		}

		unit, ok := NormalizeUnit(p.Unit)
		if !ok {
			unit = DefaultUnit
		}
		created, err := s.Add(userID, AddRequest{
			Name:         name,
			Category:     p.Category,
			Quantity:     qty,
			Unit:         unit,
			PurchaseDate: p.PurchaseDate,
			ExpiryDate:   p.ExpiryDate,
			Status:       status,
		})
		if err != nil {
			return changes, err
		}
		changes = append(changes, Change{Created: true, Item: *created})
	}
	return changes, nil
}
