// Package prefs guarda las preferencias de UI por sesión (tema y búsqueda).
// Los componentes reciben un Store; no hay estado global.
package prefs

import (
	"context"
	"errors"
	"strings"
)

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"

	DefaultPageSize = 20
	MaxPageSize     = 100
)

var ErrInvalidSession = errors.New("invalid session id")

type Search struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	Sort     string `json:"sort" binding:"omitempty,oneof=name:asc name:desc price:asc price:desc created_at:desc created_at:asc"`
	PageSize int    `json:"page_size" binding:"omitempty,min=1,max=100"`
}

type Preferences struct {
	Theme  string `json:"theme" binding:"omitempty,oneof=light dark system"`
	Search Search `json:"search"`
}

func Defaults() Preferences {
	return Preferences{
		Theme:  ThemeSystem,
		Search: Search{Sort: "created_at:desc", PageSize: DefaultPageSize},
	}
}

// Normalize completa los campos vacíos con los defaults y acota page_size
func (p Preferences) Normalize() Preferences {
	d := Defaults()
	switch p.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		p.Theme = d.Theme
	}
	p.Search.Query = strings.TrimSpace(p.Search.Query)
	if p.Search.Sort == "" {
		p.Search.Sort = d.Search.Sort
	}
	if p.Search.PageSize <= 0 {
		p.Search.PageSize = d.Search.PageSize
	}
	if p.Search.PageSize > MaxPageSize {
		p.Search.PageSize = MaxPageSize
	}
	return p
}

// Store es el almacenamiento clave-valor de preferencias, por sesión.
// Load de una sesión sin datos devuelve Defaults().
type Store interface {
	Load(ctx context.Context, session string) (Preferences, error)
	Save(ctx context.Context, session string, p Preferences) error
}

func validSession(session string) error {
	if strings.TrimSpace(session) == "" || strings.ContainsAny(session, " /") {
		return ErrInvalidSession
	}
	return nil
}
