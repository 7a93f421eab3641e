package money

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Amount es un importe monetario decimal. Se serializa como string en JSON
// y como Decimal128 en Mongo.
type Amount struct {
	decimal.Decimal
}

var Zero = Amount{Decimal: decimal.Zero}

func New(d decimal.Decimal) Amount { return Amount{Decimal: d} }

// MustParse es para fixtures y constantes; hace panic si el string no es decimal
func MustParse(s string) Amount {
	return Amount{Decimal: decimal.RequireFromString(s)}
}

func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, err
	}
	return Amount{Decimal: d}, nil
}

// FromFloat rechaza NaN e infinitos
func FromFloat(f float64) (Amount, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Zero, fmt.Errorf("non-finite amount %v", f)
	}
	return Amount{Decimal: decimal.NewFromFloat(f)}, nil
}

// FromCents convierte montos guardados como enteros en centavos
func FromCents(cents int64) Amount {
	return Amount{Decimal: decimal.New(cents, -2)}
}

func (a Amount) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d, err := primitive.ParseDecimal128(a.Decimal.String())
	if err != nil {
		return 0, nil, err
	}
	return bson.MarshalValue(d)
}

func (a *Amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bsontype.Decimal128:
		d, err := decimal.NewFromString(raw.Decimal128().String())
		if err != nil {
			return err
		}
		a.Decimal = d
	case bsontype.String:
		d, err := decimal.NewFromString(raw.StringValue())
		if err != nil {
			return err
		}
		a.Decimal = d
	case bsontype.Double:
		parsed, err := FromFloat(raw.Double())
		if err != nil {
			return err
		}
		*a = parsed
	case bsontype.Int32:
		a.Decimal = decimal.NewFromInt32(raw.Int32())
	case bsontype.Int64:
		a.Decimal = decimal.NewFromInt(raw.Int64())
	case bsontype.Null, bsontype.Undefined:
		a.Decimal = decimal.Zero
	default:
		return fmt.Errorf("money: cannot decode bson %s into Amount", t)
	}
	return nil
}
