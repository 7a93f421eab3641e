package money

import (
	"math"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestFromFloatRejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := FromFloat(f); err == nil {
			t.Errorf("FromFloat(%v) expected error", f)
		}
	}
}

func TestFromCents(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{2000, "20"},
		{1999, "19.99"},
		{-250, "-2.5"},
		{5, "0.05"},
	}
	for _, tt := range tests {
		if got := FromCents(tt.in).String(); got != tt.want {
			t.Errorf("FromCents(%d) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestBSONDecimal128(t *testing.T) {
	type doc struct {
		Price Amount `bson:"price"`
	}

	data, err := bson.Marshal(doc{Price: MustParse("19.99")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	raw := bson.Raw(data)
	if got := raw.Lookup("price").Type; got != bson.TypeDecimal128 {
		t.Fatalf("price stored as %s, want decimal128", got)
	}

	var out doc
	if err := bson.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Price.Equal(MustParse("19.99").Decimal) {
		t.Errorf("round trip = %s", out.Price)
	}
}

func TestBSONLegacyDouble(t *testing.T) {
	data, err := bson.Marshal(bson.M{"price": 5.5})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out struct {
		Price Amount `bson:"price"`
	}
	if err := bson.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Price.String() != "5.5" {
		t.Errorf("price = %s, want 5.5", out.Price)
	}
}
