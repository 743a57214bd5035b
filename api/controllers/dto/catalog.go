package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
)

type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Item struct {
	ID         uuid.UUID `json:"id"`
	CategoryID uuid.UUID `json:"category_id"`
	Category   *Category `json:"category,omitempty"`
	Name       string    `json:"name"`
	Code       string    `json:"code"`
	Unit       string    `json:"unit"`
	Stock      int       `json:"stock"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Supplier struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address *string   `json:"address,omitempty"`
	Phone   *string   `json:"phone,omitempty"`
}

type Guest struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Phone       *string   `json:"phone,omitempty"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type StockMovement struct {
	ID          uuid.UUID `json:"id"`
	ItemID      uuid.UUID `json:"item_id"`
	Delta       int       `json:"delta"`
	StockAfter  int       `json:"stock_after"`
	Reason      string    `json:"reason"`
	ReferenceID uuid.UUID `json:"reference_id"`
	ActorID     uuid.UUID `json:"actor_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewCategory(c models.Category) Category {
	return Category{ID: c.ID, Name: c.Name}
}

func NewCategories(rows []models.Category) []Category {
	out := make([]Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewCategory(row))
	}
	return out
}

func NewItem(item *models.Item) *Item {
	if item == nil {
		return nil
	}
	out := &Item{
		ID:         item.ID,
		CategoryID: item.CategoryID,
		Name:       item.Name,
		Code:       item.Code,
		Unit:       item.Unit,
		Stock:      item.Stock,
		UpdatedAt:  item.UpdatedAt,
	}
	if item.Category != nil {
		c := NewCategory(*item.Category)
		out.Category = &c
	}
	return out
}

func NewItems(rows []models.Item) []Item {
	out := make([]Item, 0, len(rows))
	for i := range rows {
		out = append(out, *NewItem(&rows[i]))
	}
	return out
}

func NewSupplier(s *models.Supplier) *Supplier {
	if s == nil {
		return nil
	}
	return &Supplier{ID: s.ID, Name: s.Name, Address: s.Address, Phone: s.Phone}
}

func NewSuppliers(rows []models.Supplier) []Supplier {
	out := make([]Supplier, 0, len(rows))
	for i := range rows {
		out = append(out, *NewSupplier(&rows[i]))
	}
	return out
}

func NewGuest(g *models.Guest) *Guest {
	if g == nil {
		return nil
	}
	return &Guest{ID: g.ID, Name: g.Name, Phone: g.Phone, Description: g.Description, CreatedAt: g.CreatedAt}
}

func NewStockMovements(rows []models.StockMovement) []StockMovement {
	out := make([]StockMovement, 0, len(rows))
	for _, m := range rows {
		out = append(out, StockMovement{
			ID:          m.ID,
			ItemID:      m.ItemID,
			Delta:       m.Delta,
			StockAfter:  m.StockAfter,
			Reason:      string(m.Reason),
			ReferenceID: m.ReferenceID,
			ActorID:     m.ActorID,
			CreatedAt:   m.CreatedAt,
		})
	}
	return out
}
