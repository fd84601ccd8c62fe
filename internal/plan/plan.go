// Package plan holds the subscription plan record mirrored from the admin API
// and the raw-text form state used to create and edit plans.
package plan

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// Plan is a server-owned subscription tier. IDs are assigned by the backend.
type Plan struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	DurationDays int             `json:"duration_days"`
	Price        decimal.Decimal `json:"price"`
}

type wirePlan struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	DurationDays int             `json:"duration_days"`
	Price        json.RawMessage `json:"price"`
}

// MarshalJSON encodes the price as a JSON number rather than decimal's default string.
func (p Plan) MarshalJSON() ([]byte, error) {
	return json.Marshal(wirePlan{
		ID:           p.ID,
		Name:         p.Name,
		DurationDays: p.DurationDays,
		Price:        json.RawMessage(p.Price.String()),
	})
}

// UnmarshalJSON accepts the price either as a number or as a decimal string.
func (p *Plan) UnmarshalJSON(data []byte) error {
	var raw wirePlan
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	price := decimal.Zero
	if len(raw.Price) > 0 && string(raw.Price) != "null" {
		if err := price.UnmarshalJSON(raw.Price); err != nil {
			return err
		}
	}
	*p = Plan{ID: raw.ID, Name: raw.Name, DurationDays: raw.DurationDays, Price: price}
	return nil
}

// Fields is the editable text of a plan as typed into a form.
type Fields struct {
	Name         string
	DurationDays string
	Price        string
}

// Draft is the add-form state. EditBuffer is the working copy of an existing row.
type (
	Draft      = Fields
	EditBuffer = Fields
)

// BufferFrom seeds an edit buffer with the plan's displayed values.
func BufferFrom(p Plan) EditBuffer {
	return EditBuffer{
		Name:         p.Name,
		DurationDays: strconv.Itoa(p.DurationDays),
		Price:        p.Price.String(),
	}
}

// IsZero reports whether no field has been typed into.
func (f Fields) IsZero() bool {
	return f == Fields{}
}

// Input is the create/replace request body.
type Input struct {
	Name         string      `json:"name"`
	DurationDays json.Number `json:"duration_days"`
	Price        json.Number `json:"price"`
}
