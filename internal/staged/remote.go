package staged

import "context"

// Position es un elemento del payload de PUT collection/reorder
type Position struct {
	ID        string `json:"id" binding:"required"`
	SortOrder int    `json:"sort_order" binding:"min=0"`
	IsDefault bool   `json:"is_default"`
}

// Remote es el contrato REST/JSON de la colección remota:
//
//	GET    collection          -> List
//	POST   collection          -> Create
//	PUT    collection/{id}     -> Update
//	DELETE collection/{id}     -> Delete
//	PUT    collection/{id}/default -> SetDefault
//	PUT    collection/reorder  -> Reorder
type Remote[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id string, item T) (T, error)
	Delete(ctx context.Context, id string) error
	SetDefault(ctx context.Context, id string) error
	Reorder(ctx context.Context, positions []Position) ([]T, error)
}

// Traits le dice al editor cómo leer y escribir los campos que necesita de T.
type Traits[T any] struct {
	// ID devuelve el id del servidor de un elemento ya persistido
	ID func(T) string
	SetSortOrder func(*T, int)

	// IsDefault y SetDefault son nil si la colección no tiene flag de default
	IsDefault  func(T) bool
	SetDefault func(*T, bool)

	// Key es la clave natural usada para deduplicar en Load; nil la desactiva
	Key func(T) string

	// Clone copia en profundidad; hace falta si T contiene slices o maps
	Clone func(T) T
}

func (t Traits[T]) hasDefault() bool {
	return t.IsDefault != nil && t.SetDefault != nil
}
