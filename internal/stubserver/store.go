package stubserver

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/kingrea/plandesk/internal/plan"
)

// Messages follow the wording Django REST framework backends return.
var (
	errNotFound = errors.New("Not found.")
	errRequired = errors.New("This field is required.")
	errInteger  = errors.New("A valid integer is required.")
	errNumber   = errors.New("A valid number is required.")
)

// store keeps plans in insertion order, the way the list endpoint returns them.
type store struct {
	mu     sync.Mutex
	plans  []plan.Plan
	nextID int64
}

func newStore(seed []plan.Plan) *store {
	s := &store{nextID: 1}
	for _, p := range seed {
		s.plans = append(s.plans, p)
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}
	return s
}

func (s *store) list() []plan.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]plan.Plan, len(s.plans))
	copy(out, s.plans)
	return out
}

func (s *store) create(fields planFields) plan.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := fields.toPlan(s.nextID)
	s.nextID++
	s.plans = append(s.plans, p)
	return p
}

func (s *store) replace(id int64, fields planFields) (plan.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.plans {
		if s.plans[i].ID == id {
			s.plans[i] = fields.toPlan(id)
			return s.plans[i], nil
		}
	}
	return plan.Plan{}, errNotFound
}

func (s *store) remove(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.plans {
		if s.plans[i].ID == id {
			s.plans = append(s.plans[:i], s.plans[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

type planFields struct {
	name  string
	days  int
	price decimal.Decimal
}

func (f planFields) toPlan(id int64) plan.Plan {
	return plan.Plan{ID: id, Name: f.name, DurationDays: f.days, Price: f.price}
}

// parsePlanFields validates a create/replace body. Numbers may arrive as JSON
// numbers or numeric strings, the way form posts often send them.
func parsePlanFields(body []byte) (planFields, map[string]string) {
	var raw struct {
		Name         *string         `json:"name"`
		DurationDays json.RawMessage `json:"duration_days"`
		Price        json.RawMessage `json:"price"`
	}
	problems := map[string]string{}
	if err := json.Unmarshal(body, &raw); err != nil {
		problems["non_field_errors"] = "Invalid JSON."
		return planFields{}, problems
	}
	var fields planFields
	if raw.Name == nil || strings.TrimSpace(*raw.Name) == "" {
		problems["name"] = errRequired.Error()
	} else {
		fields.name = *raw.Name
	}
	if days, err := parseInt(raw.DurationDays); err != nil {
		problems["duration_days"] = err.Error()
	} else {
		fields.days = days
	}
	if price, err := parseDecimal(raw.Price); err != nil {
		problems["price"] = err.Error()
	} else {
		fields.price = price
	}
	return fields, problems
}

func unquote(raw json.RawMessage) (string, bool) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return "", false
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		text = strings.TrimSpace(s)
	}
	return text, text != ""
}

func parseInt(raw json.RawMessage) (int, error) {
	text, ok := unquote(raw)
	if !ok {
		return 0, errRequired
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, errInteger
	}
	return n, nil
}

func parseDecimal(raw json.RawMessage) (decimal.Decimal, error) {
	text, ok := unquote(raw)
	if !ok {
		return decimal.Zero, errRequired
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, errNumber
	}
	return d, nil
}
