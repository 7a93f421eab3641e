package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/staged"
)

// Entry lo implementan los elementos de las colecciones ordenadas por dueño
// (direcciones de un usuario, media y opciones de un producto).
type Entry interface {
	EntryID() primitive.ObjectID
	// Prepare inicializa los campos del sistema antes de insertar
	Prepare(owner string, sortOrder int, now time.Time)
	// Touch se llama antes de cada update
	Touch(now time.Time)
}

// Defaulter lo implementan las colecciones con un único elemento default
type Defaulter interface {
	Default() bool
}

// Position es un elemento del payload de PUT collection/reorder
type Position = staged.Position
