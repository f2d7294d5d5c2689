package grouporder

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ParticipantItem struct {
	ProductID uuid.UUID `json:"product"`
	Quantity  int       `json:"quantity"`
}

type Participant struct {
	VendorID uuid.UUID         `json:"vendor"`
	Items    []ParticipantItem `json:"items"`
}

// Participants is stored as a JSONB array.
type Participants []Participant

func (p Participants) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

func (p *Participants) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = Participants{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("participants: unsupported source type")
	}
	return json.Unmarshal(raw, p)
}

// Has reports whether the vendor already joined.
func (p Participants) Has(vendorID uuid.UUID) bool {
	for _, part := range p {
		if part.VendorID == vendorID {
			return true
		}
	}
	return false
}

type GroupOrder struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	CreatedBy    uuid.UUID       `db:"created_by" json:"createdBy"`
	Participants Participants    `db:"participants" json:"participants"`
	TotalCost    decimal.Decimal `db:"total_cost" json:"totalCost"`
	IsConfirmed  bool            `db:"is_confirmed" json:"isConfirmed"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}

type CreateInput struct {
	Name string `json:"name"`
}

type JoinInput struct {
	Items []ParticipantItem `json:"items"`
}
