package pricing

import (
	"encoding/json"
	"fmt"

	"storefront/internal/models"
)

type selectionKey string

const (
	keyName selectionKey = "name"
	keyID   selectionKey = "id"
)

// OptionSelection es la elección del cliente: una opción -> un valor.
// Se construye con ByName o ByID y no se pueden mezclar claves.
type OptionSelection struct {
	by     selectionKey
	values map[string]string
}

// ByName: nombre de la opción -> nombre del valor (ej. "Size" -> "Large")
func ByName(values map[string]string) OptionSelection {
	return OptionSelection{by: keyName, values: values}
}

// ByID: id de la opción -> id del valor
func ByID(values map[string]string) OptionSelection {
	return OptionSelection{by: keyID, values: values}
}

// NoSelection no elige nada; cada opción aporta 0
func NoSelection() OptionSelection { return OptionSelection{by: keyName} }

func (s OptionSelection) Len() int { return len(s.values) }

// Lookup devuelve el valor elegido para la opción, si hay uno que exista
func (s OptionSelection) Lookup(o models.Option) (models.OptionValue, bool) {
	var optKey string
	switch s.by {
	case keyID:
		optKey = o.ID.Hex()
	default:
		optKey = o.Name
	}

	chosen, ok := s.values[optKey]
	if !ok {
		return models.OptionValue{}, false
	}
	for _, v := range o.Values {
		if (s.by == keyID && v.ID == chosen) || (s.by != keyID && v.Name == chosen) {
			return v, true
		}
	}
	return models.OptionValue{}, false
}

type selectionJSON struct {
	By     string            `json:"by"`
	Values map[string]string `json:"values"`
}

func (s OptionSelection) MarshalJSON() ([]byte, error) {
	by := s.by
	if by == "" {
		by = keyName
	}
	return json.Marshal(selectionJSON{By: string(by), Values: s.values})
}

func (s *OptionSelection) UnmarshalJSON(data []byte) error {
	var raw selectionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch selectionKey(raw.By) {
	case keyName, "":
		*s = ByName(raw.Values)
	case keyID:
		*s = ByID(raw.Values)
	default:
		return fmt.Errorf("unknown selection key %q (want \"name\" or \"id\")", raw.By)
	}
	return nil
}
