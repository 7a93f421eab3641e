package staged

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Row es un elemento visible del editor junto con su id
type Row[T any] struct {
	ID   ID
	Item T
}

// Pending resume los cambios locales que todavía no se mandaron al servidor
type Pending struct {
	Creates int
	Updates int
	Deletes int
	Default *ID
}

func (p Pending) Empty() bool {
	return p.Creates == 0 && p.Updates == 0 && p.Deletes == 0 && p.Default == nil
}

// Editor es un buffer de edición local sobre una colección remota ordenada.
// Los cambios se aplican primero en memoria (vista optimista) y se mandan al
// servidor en un único Commit.
//
// Un Editor pertenece a una sola sesión; el mutex solo protege contra lecturas
// concurrentes mientras corre un commit.
type Editor[T any] struct {
	mu     sync.Mutex
	remote Remote[T]
	traits Traits[T]
	log    *zap.Logger

	createConcurrency int
	nextTemp          uint64

	state   State
	loadErr error

	snapshot []Row[T]
	items    []Row[T]

	created    []uint64        // temporales pendientes, en orden de creación
	updated    []string        // ids del servidor con update pendiente
	updatedSet map[string]bool
	deleted    []string
	defaultID  *ID
}

type EditorOption func(*editorOptions)

type editorOptions struct {
	log               *zap.Logger
	createConcurrency int
	tempSeed          uint64
}

func WithLogger(l *zap.Logger) EditorOption {
	return func(o *editorOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// WithCreateConcurrency limita cuántos creates se mandan en paralelo
func WithCreateConcurrency(n int) EditorOption {
	return func(o *editorOptions) {
		if n > 0 {
			o.createConcurrency = n
		}
	}
}

// WithTempSeed fija el primer id temporal (por defecto, el timestamp en ms)
func WithTempSeed(seed uint64) EditorOption {
	return func(o *editorOptions) {
		if seed > 0 {
			o.tempSeed = seed
		}
	}
}

func NewEditor[T any](remote Remote[T], traits Traits[T], opts ...EditorOption) *Editor[T] {
	o := editorOptions{
		log:               zap.NewNop(),
		createConcurrency: 4,
		tempSeed:          uint64(time.Now().UnixMilli()),
	}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Editor[T]{
		remote:            remote,
		traits:            traits,
		log:               o.log,
		createConcurrency: o.createConcurrency,
		nextTemp:          o.tempSeed,
		state:             Idle,
	}
	e.clearStaged()
	return e
}

func (e *Editor[T]) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Err devuelve el error del último Load fallido
func (e *Editor[T]) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadErr
}

// Load trae la colección autoritativa, reemplaza la vista local y descarta
// todo lo pendiente.
func (e *Editor[T]) Load(ctx context.Context) ([]T, error) {
	e.mu.Lock()
	if e.state == Loading || e.state == Committing {
		e.mu.Unlock()
		return nil, ErrBusy
	}
	e.state = Loading
	e.mu.Unlock()

	items, err := e.remote.List(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.state = Failed
		e.loadErr = err
		e.log.Warn("collection load failed", zap.Error(err))
		return nil, err
	}

	e.replace(e.dedupe(items))
	e.state = Loaded
	e.loadErr = nil
	e.log.Debug("collection loaded", zap.Int("items", len(e.items)))
	return e.values(), nil
}

// dedupe descarta elementos cuya clave natural ya apareció, dejando el primero
func (e *Editor[T]) dedupe(items []T) []T {
	if e.traits.Key == nil {
		return items
	}

	seen := make(map[string]bool, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		k := e.traits.Key(it)
		if seen[k] {
			e.log.Warn("dropping duplicate item on load",
				zap.String("id", e.traits.ID(it)),
				zap.String("key", k))
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}

// replace debe llamarse con el lock tomado
func (e *Editor[T]) replace(items []T) {
	e.items = make([]Row[T], len(items))
	for i, it := range items {
		e.items[i] = Row[T]{ID: Persisted(e.traits.ID(it)), Item: it}
	}
	e.snapshot = e.cloneRows(e.items)
	e.clearStaged()
}

func (e *Editor[T]) clearStaged() {
	e.created = nil
	e.updated = nil
	e.updatedSet = map[string]bool{}
	e.deleted = nil
	e.defaultID = nil
}

// Items devuelve la vista local actual, en orden
func (e *Editor[T]) Items() []T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.values()
}

func (e *Editor[T]) values() []T {
	out := make([]T, len(e.items))
	for i, r := range e.items {
		out[i] = r.Item
	}
	return out
}

// Rows devuelve la vista local con los ids (temporales o del servidor)
func (e *Editor[T]) Rows() []Row[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cloneRows(e.items)
}

// Find busca un elemento visible por la forma textual de su id
func (e *Editor[T]) Find(id string) (Row[T], bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target := ParseID(id)
	if i := e.indexOf(target); i >= 0 {
		return e.items[i], true
	}
	return Row[T]{}, false
}

func (e *Editor[T]) Pending() Pending {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := Pending{
		Creates: len(e.created),
		Updates: len(e.updated),
		Deletes: len(e.deleted),
	}
	if e.defaultID != nil {
		id := *e.defaultID
		p.Default = &id
	}
	return p
}

func (e *Editor[T]) editable() error {
	switch e.state {
	case Loaded:
		return nil
	case Loading, Committing:
		return ErrBusy
	default:
		return ErrNotLoaded
	}
}

func (e *Editor[T]) indexOf(id ID) int {
	for i, r := range e.items {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// StageCreate agrega el elemento al final con un id temporal nuevo
func (e *Editor[T]) StageCreate(item T) (ID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editable(); err != nil {
		return ID{}, err
	}

	id := Temporary(e.nextTemp)
	e.nextTemp++

	wantsDefault := e.traits.hasDefault() && e.traits.IsDefault(item)
	if e.traits.hasDefault() {
		e.traits.SetDefault(&item, false)
	}
	e.traits.SetSortOrder(&item, len(e.items))
	e.items = append(e.items, Row[T]{ID: id, Item: item})
	e.created = append(e.created, id.temp)

	if wantsDefault {
		e.setDefault(id)
	}
	return id, nil
}

// StageUpdate aplica patch sobre la vista local. Si el elemento todavía es
// temporal el cambio queda dentro del create pendiente. El flag de default
// no se cambia por acá: usar StageSetDefault.
func (e *Editor[T]) StageUpdate(id ID, patch func(*T)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editable(); err != nil {
		return err
	}

	i := e.indexOf(id)
	if i < 0 {
		return ErrUnknownItem
	}

	item := e.clone(e.items[i].Item)
	var wasDefault bool
	if e.traits.hasDefault() {
		wasDefault = e.traits.IsDefault(item)
	}
	patch(&item)
	if e.traits.hasDefault() {
		e.traits.SetDefault(&item, wasDefault)
	}
	e.traits.SetSortOrder(&item, i)
	e.items[i].Item = item

	if id.IsTemporary() {
		return nil
	}
	if !e.updatedSet[id.server] {
		e.updatedSet[id.server] = true
		e.updated = append(e.updated, id.server)
	}
	return nil
}

// StageDelete saca el elemento de la vista. Un temporal se descarta sin tocar
// el servidor; uno persistido queda pendiente de borrar y pierde su update.
func (e *Editor[T]) StageDelete(id ID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editable(); err != nil {
		return err
	}

	i := e.indexOf(id)
	if i < 0 {
		return ErrUnknownItem
	}
	e.items = append(e.items[:i], e.items[i+1:]...)
	e.renumber()

	if id.IsTemporary() {
		e.created = removeValue(e.created, id.temp)
	} else {
		e.deleted = append(e.deleted, id.server)
		if e.updatedSet[id.server] {
			delete(e.updatedSet, id.server)
			e.updated = removeValue(e.updated, id.server)
		}
	}

	if e.defaultID != nil && *e.defaultID == id {
		e.defaultID = nil
	}
	return nil
}

// StageSetDefault marca un único elemento como default
func (e *Editor[T]) StageSetDefault(id ID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editable(); err != nil {
		return err
	}
	if !e.traits.hasDefault() {
		return ErrNoDefaultFlag
	}
	if e.indexOf(id) < 0 {
		return ErrUnknownItem
	}
	e.setDefault(id)
	return nil
}

func (e *Editor[T]) setDefault(id ID) {
	for i := range e.items {
		e.traits.SetDefault(&e.items[i].Item, e.items[i].ID == id)
	}
	target := id
	e.defaultID = &target
}

// StageReorder reescribe el orden local; order debe contener exactamente los
// ids visibles. Los sort_order quedan 0..n-1.
func (e *Editor[T]) StageReorder(order []ID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editable(); err != nil {
		return err
	}
	if len(order) != len(e.items) {
		return ErrInvalidOrder
	}

	byID := make(map[ID]Row[T], len(e.items))
	for _, r := range e.items {
		byID[r.ID] = r
	}

	next := make([]Row[T], 0, len(order))
	for _, id := range order {
		r, ok := byID[id]
		if !ok {
			return ErrInvalidOrder
		}
		delete(byID, id)
		next = append(next, r)
	}

	e.items = next
	e.renumber()
	return nil
}

func (e *Editor[T]) renumber() {
	for i := range e.items {
		e.traits.SetSortOrder(&e.items[i].Item, i)
	}
}

// Cancel descarta lo pendiente y vuelve a la última carga
func (e *Editor[T]) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Loading || e.state == Committing {
		return ErrBusy
	}
	e.items = e.cloneRows(e.snapshot)
	e.clearStaged()
	return nil
}

func (e *Editor[T]) clone(item T) T {
	if e.traits.Clone == nil {
		return item
	}
	return e.traits.Clone(item)
}

func (e *Editor[T]) cloneRows(rows []Row[T]) []Row[T] {
	out := make([]Row[T], len(rows))
	for i, r := range rows {
		out[i] = Row[T]{ID: r.ID, Item: e.clone(r.Item)}
	}
	return out
}

func removeValue[V comparable](s []V, v V) []V {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
