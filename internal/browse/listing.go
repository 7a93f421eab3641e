// Package browse mantiene el estado de un listado paginado de productos.
// Cada cambio de filtro o de página es una llamada explícita que dispara una
// única carga; una respuesta vieja nunca pisa a una más nueva.
package browse

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/prefs"
	"storefront/internal/staged"
)

// ErrSuperseded: mientras esta carga volaba se pidió otra
var ErrSuperseded = errors.New("listing request superseded by a newer one")

type Query struct {
	Search   string
	Category string
	Sort     string
	Page     int
	PageSize int
}

type Result[T any] struct {
	Items      []T
	Total      int64
	TotalPages int64
}

type Fetcher[T any] func(ctx context.Context, q Query) (Result[T], error)

type Listing[T any] struct {
	mu      sync.Mutex
	fetch   Fetcher[T]
	store   prefs.Store
	session string
	log     *zap.Logger

	state  staged.State
	query  Query
	result Result[T]
	err    error
	gen    uint64
}

func NewListing[T any](fetch Fetcher[T], store prefs.Store, session string, log *zap.Logger) *Listing[T] {
	if log == nil {
		log = zap.NewNop()
	}
	d := prefs.Defaults().Search
	return &Listing[T]{
		fetch:   fetch,
		store:   store,
		session: session,
		log:     log,
		state:   staged.Idle,
		query:   Query{Sort: d.Sort, Page: 1, PageSize: d.PageSize},
	}
}

// Restore toma búsqueda, orden y tamaño de página de las preferencias guardadas
func (l *Listing[T]) Restore(ctx context.Context) error {
	p, err := l.store.Load(ctx, l.session)
	if err != nil {
		return err
	}
	p = p.Normalize()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.query = Query{
		Search:   p.Search.Query,
		Category: p.Search.Category,
		Sort:     p.Search.Sort,
		Page:     1,
		PageSize: p.Search.PageSize,
	}
	return nil
}

func (l *Listing[T]) State() staged.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Listing[T]) Query() Query {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query
}

// Result devuelve la última carga exitosa y el error de la última fallida
func (l *Listing[T]) Result() (Result[T], error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.result, l.err
}

// Search cambia el filtro, vuelve a la página 1, guarda la preferencia y carga
func (l *Listing[T]) Search(ctx context.Context, text, category string) (Result[T], error) {
	l.mu.Lock()
	l.query.Search = text
	l.query.Category = category
	l.query.Page = 1
	l.mu.Unlock()

	if err := l.persist(ctx); err != nil {
		l.log.Warn("could not save search preferences", zap.Error(err))
	}
	return l.Reload(ctx)
}

func (l *Listing[T]) SortBy(ctx context.Context, sort string) (Result[T], error) {
	l.mu.Lock()
	l.query.Sort = sort
	l.query.Page = 1
	l.mu.Unlock()

	if err := l.persist(ctx); err != nil {
		l.log.Warn("could not save search preferences", zap.Error(err))
	}
	return l.Reload(ctx)
}

func (l *Listing[T]) GoToPage(ctx context.Context, page int) (Result[T], error) {
	if page < 1 {
		page = 1
	}
	l.mu.Lock()
	l.query.Page = page
	l.mu.Unlock()
	return l.Reload(ctx)
}

// Reload carga con la query actual
func (l *Listing[T]) Reload(ctx context.Context) (Result[T], error) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	q := l.query
	l.state = staged.Loading
	l.mu.Unlock()

	res, err := l.fetch(ctx, q)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		l.log.Debug("dropping stale listing response", zap.Uint64("gen", gen))
		return Result[T]{}, ErrSuperseded
	}
	if err != nil {
		l.state = staged.Failed
		l.err = err
		return Result[T]{}, err
	}
	l.state = staged.Loaded
	l.result = res
	l.err = nil
	return res, nil
}

func (l *Listing[T]) persist(ctx context.Context) error {
	p, err := l.store.Load(ctx, l.session)
	if err != nil {
		return err
	}
	q := l.Query()
	p.Search = prefs.Search{Query: q.Search, Category: q.Category, Sort: q.Sort, PageSize: q.PageSize}
	return l.store.Save(ctx, l.session, p)
}
