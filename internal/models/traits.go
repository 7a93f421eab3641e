package models

import (
	"storefront/internal/staged"
)

// Traits para usar cada colección con staged.Editor

var AddressTraits = staged.Traits[Address]{
	ID:           func(a Address) string { return a.ID.Hex() },
	SetSortOrder: func(a *Address, n int) { a.SortOrder = n },
	IsDefault:    func(a Address) bool { return a.IsDefault },
	SetDefault:   func(a *Address, v bool) { a.IsDefault = v },
	Key:          func(a Address) string { return a.NaturalKey() },
}

var MediaTraits = staged.Traits[Media]{
	ID:           func(m Media) string { return m.ID.Hex() },
	SetSortOrder: func(m *Media, n int) { m.Sort = n },
}

var OptionTraits = staged.Traits[Option]{
	ID:           func(o Option) string { return o.ID.Hex() },
	SetSortOrder: func(o *Option, n int) { o.SortOrder = n },
	Clone: func(o Option) Option {
		o.Values = append([]OptionValue(nil), o.Values...)
		return o
	},
}
