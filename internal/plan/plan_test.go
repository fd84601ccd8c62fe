package plan

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPlanDecodesNumericAndStringPrices(t *testing.T) {
	var fromNumber, fromString Plan
	if err := json.Unmarshal([]byte(`{"id":7,"name":"Gold","duration_days":30,"price":499}`), &fromNumber); err != nil {
		t.Fatalf("decode numeric price: %v", err)
	}
	if err := json.Unmarshal([]byte(`{"id":7,"name":"Gold","duration_days":30,"price":"499.00"}`), &fromString); err != nil {
		t.Fatalf("decode string price: %v", err)
	}
	if !fromNumber.Price.Equal(decimal.NewFromInt(499)) || !fromString.Price.Equal(fromNumber.Price) {
		t.Fatalf("prices = %s / %s, want 499", fromNumber.Price, fromString.Price)
	}
	if fromNumber.ID != 7 || fromNumber.DurationDays != 30 || fromNumber.Name != "Gold" {
		t.Fatalf("unexpected plan %+v", fromNumber)
	}
}

func TestPlanEncodesPriceAsNumber(t *testing.T) {
	p := Plan{ID: 3, Name: "Silver", DurationDays: 90, Price: decimal.RequireFromString("249.5")}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":3,"name":"Silver","duration_days":90,"price":249.5}`
	if string(data) != want {
		t.Fatalf("json = %s, want %s", data, want)
	}
}

func TestBufferFromSeedsDisplayedValues(t *testing.T) {
	buf := BufferFrom(Plan{ID: 1, Name: "Basic", DurationDays: 7, Price: decimal.RequireFromString("99.90")})
	if buf.Name != "Basic" || buf.DurationDays != "7" || buf.Price != "99.9" {
		t.Fatalf("buffer = %+v", buf)
	}
}

func TestFieldsInput(t *testing.T) {
	tests := []struct {
		name      string
		fields    Fields
		want      Input
		wantField string
		wantErr   error
	}{
		{
			name:   "passes typed values through",
			fields: Fields{Name: "Gold", DurationDays: "30", Price: "499"},
			want:   Input{Name: "Gold", DurationDays: "30", Price: "499"},
		},
		{
			name:   "negative and fractional values are the backend's call",
			fields: Fields{Name: "Odd", DurationDays: "-1", Price: ".5"},
			want:   Input{Name: "Odd", DurationDays: "-1", Price: "0.5"},
		},
		{
			name:   "leading zeros are dropped",
			fields: Fields{Name: "Z", DurationDays: "007", Price: "1e2"},
			want:   Input{Name: "Z", DurationDays: "7", Price: "1e2"},
		},
		{
			name:      "blank name",
			fields:    Fields{Name: "  ", DurationDays: "30", Price: "1"},
			wantField: FieldName,
			wantErr:   ErrFieldRequired,
		},
		{
			name:      "missing duration",
			fields:    Fields{Name: "Gold", Price: "1"},
			wantField: FieldDuration,
			wantErr:   ErrFieldRequired,
		},
		{
			name:      "price fragment",
			fields:    Fields{Name: "Gold", DurationDays: "30", Price: "4.9.9"},
			wantField: FieldPrice,
			wantErr:   ErrNotNumber,
		},
		{
			name:      "lone minus",
			fields:    Fields{Name: "Gold", DurationDays: "-", Price: "1"},
			wantField: FieldDuration,
			wantErr:   ErrNotNumber,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fields.Input()
			if tt.wantErr != nil {
				var fieldErr *FieldError
				if !errors.As(err, &fieldErr) {
					t.Fatalf("expected FieldError, got %v", err)
				}
				if fieldErr.Field != tt.wantField || !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %s %v", err, tt.wantField, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("input = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIsNumericRune(t *testing.T) {
	for _, r := range "0123456789.-+eE" {
		if !IsNumericRune(r) {
			t.Fatalf("%q should be accepted", r)
		}
	}
	for _, r := range "a x₹," {
		if IsNumericRune(r) {
			t.Fatalf("%q should be rejected", r)
		}
	}
}
