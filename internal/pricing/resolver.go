package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

const (
	MinQuantity = 1
	MaxQuantity = 999
)

// UnitPrice suma al precio base el ajuste del valor elegido en cada opción.
// Una opción sin elección aporta 0.
func UnitPrice(base decimal.Decimal, options []models.Option, sel OptionSelection) (decimal.Decimal, error) {
	if err := validateBase(base); err != nil {
		return decimal.Zero, err
	}

	price := base
	for _, o := range options {
		if v, ok := sel.Lookup(o); ok {
			price = price.Add(v.PriceAdjustment.Decimal)
		}
	}
	return price, nil
}

// LineTotal = unit * qty. La UI ya limita qty, acá solo se valida.
func LineTotal(unit decimal.Decimal, qty int) (decimal.Decimal, error) {
	if qty < MinQuantity || qty > MaxQuantity {
		return decimal.Zero, &InvalidQuantityError{Quantity: qty}
	}
	return unit.Mul(decimal.NewFromInt(int64(qty))), nil
}

// ClampQuantity lleva qty a [MinQuantity, MaxQuantity] como hace la UI
func ClampQuantity(qty int) int {
	if qty < MinQuantity {
		return MinQuantity
	}
	if qty > MaxQuantity {
		return MaxQuantity
	}
	return qty
}

// Line es un renglón del carrito a cotizar
type Line struct {
	BasePrice decimal.Decimal
	Options   []models.Option
	Selection OptionSelection
	Quantity  int
}

type QuotedLine struct {
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Quantity  int             `json:"quantity"`
}

type Quote struct {
	Lines    []QuotedLine    `json:"lines"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// QuoteLines calcula precio unitario y total por renglón, más el subtotal
func QuoteLines(lines []Line) (Quote, error) {
	q := Quote{Lines: make([]QuotedLine, 0, len(lines)), Subtotal: decimal.Zero}

	for i, l := range lines {
		unit, err := UnitPrice(l.BasePrice, l.Options, l.Selection)
		if err != nil {
			return Quote{}, fmt.Errorf("line %d: %w", i, err)
		}
		total, err := LineTotal(unit, l.Quantity)
		if err != nil {
			return Quote{}, fmt.Errorf("line %d: %w", i, err)
		}

		q.Lines = append(q.Lines, QuotedLine{UnitPrice: unit, LineTotal: total, Quantity: l.Quantity})
		q.Count += l.Quantity
		q.Subtotal = q.Subtotal.Add(total)
	}
	return q, nil
}

func validateBase(base decimal.Decimal) error {
	if base.IsNegative() {
		return &MalformedPriceInputError{Field: "base_price", Reason: "must not be negative"}
	}
	return nil
}
