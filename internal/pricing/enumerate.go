package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

// MaxCombinations limita la enumeración. Crece exponencialmente con la
// cantidad de opciones; con las ~5 opciones típicas no se acerca.
var MaxCombinations = 10000

// PriceRange es el rango de precios que se muestra en el detalle del producto
type PriceRange struct {
	Min      decimal.Decimal `json:"min"`
	Max      decimal.Decimal `json:"max"`
	HasRange bool            `json:"has_range"`
}

// CombinationCount cuenta las combinaciones posibles. Una opción sin valores
// cuenta como ausente.
func CombinationCount(options []models.Option) int {
	n := 1
	for _, o := range options {
		if len(o.Values) == 0 {
			continue
		}
		n *= len(o.Values)
		if n > MaxCombinations {
			return n
		}
	}
	return n
}

// Combinations recorre en profundidad todas las formas de elegir un valor por
// opción, en el orden de sort_order. visit recibe la elección (un valor por
// opción no vacía; el slice se reutiliza) y puede cortar devolviendo false.
func Combinations(options []models.Option, visit func(chosen []models.OptionValue) bool) error {
	if CombinationCount(options) > MaxCombinations {
		return ErrTooManyCombinations
	}

	sorted := nonEmpty(models.SortOptions(options))
	chosen := make([]models.OptionValue, len(sorted))

	var walk func(depth int) bool
	walk = func(depth int) bool {
		if depth == len(sorted) {
			return visit(chosen)
		}
		for _, v := range sorted[depth].Values {
			chosen[depth] = v
			if !walk(depth + 1) {
				return false
			}
		}
		return true
	}
	walk(0)
	return nil
}

// Enumerate devuelve base + suma de ajustes para cada combinación.
// Sin opciones devuelve [base].
func Enumerate(base decimal.Decimal, options []models.Option) ([]decimal.Decimal, error) {
	if err := validateBase(base); err != nil {
		return nil, err
	}

	sorted := nonEmpty(models.SortOptions(options))
	if CombinationCount(sorted) > MaxCombinations {
		return nil, ErrTooManyCombinations
	}

	out := make([]decimal.Decimal, 0, CombinationCount(sorted))

	var walk func(depth int, sum decimal.Decimal)
	walk = func(depth int, sum decimal.Decimal) {
		if depth == len(sorted) {
			out = append(out, base.Add(sum))
			return
		}
		for _, v := range sorted[depth].Values {
			walk(depth+1, sum.Add(v.PriceAdjustment.Decimal))
		}
	}
	walk(0, decimal.Zero)

	return out, nil
}

// Range calcula min/max sobre la enumeración. Si hay demasiadas
// combinaciones usa los extremos de cada opción, que dan el mismo resultado.
func Range(base decimal.Decimal, options []models.Option) (PriceRange, error) {
	prices, err := Enumerate(base, options)
	if err == ErrTooManyCombinations {
		return boundsRange(base, options), nil
	}
	if err != nil {
		return PriceRange{}, err
	}

	r := PriceRange{Min: prices[0], Max: prices[0]}
	for _, p := range prices[1:] {
		if p.LessThan(r.Min) {
			r.Min = p
		}
		if p.GreaterThan(r.Max) {
			r.Max = p
		}
	}
	r.HasRange = !r.Min.Equal(r.Max)
	return r, nil
}

func boundsRange(base decimal.Decimal, options []models.Option) PriceRange {
	lo, hi := base, base
	for _, o := range nonEmpty(options) {
		cheapest, priciest := o.Values[0].PriceAdjustment.Decimal, o.Values[0].PriceAdjustment.Decimal
		for _, v := range o.Values[1:] {
			cheapest = decimal.Min(cheapest, v.PriceAdjustment.Decimal)
			priciest = decimal.Max(priciest, v.PriceAdjustment.Decimal)
		}
		lo = lo.Add(cheapest)
		hi = hi.Add(priciest)
	}
	return PriceRange{Min: lo, Max: hi, HasRange: !lo.Equal(hi)}
}

func nonEmpty(options []models.Option) []models.Option {
	out := make([]models.Option, 0, len(options))
	for _, o := range options {
		if len(o.Values) > 0 {
			out = append(out, o)
		}
	}
	return out
}
