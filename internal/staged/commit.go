package staged

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// plan es la foto de lo pendiente que se ejecuta en un Commit
type plan[T any] struct {
	creates   []Row[T]
	updates   []Row[T]
	deletes   []string
	defaultID *ID
	order     []Row[T]
}

// commitRun acumula lo que ya se aplicó en el servidor
type commitRun struct {
	idMap     map[uint64]string
	completed []Step
	applied   int
	updated   []string
	deleted   []string
}

// Commit manda los cambios pendientes al servidor en este orden:
// creates -> updates -> deletes -> default -> reorder.
//
// Los creates salen en paralelo y se espera a todos antes de seguir, porque
// los pasos siguientes usan el mapa temporal -> id real. Si algún paso falla
// se corta ahí: las llamadas que ya se aplicaron se retiran de lo pendiente
// (un reintento no duplica creates) y la vista local queda como estaba.
// En ese caso conviene volver a llamar a Load.
//
// Un commit empezado no se cancela: las llamadas usan ctx sin su cancelación
// (los valores sí pasan). Los timeouts quedan a cargo del cliente HTTP.
func (e *Editor[T]) Commit(ctx context.Context) ([]T, error) {
	e.mu.Lock()
	if err := e.editable(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	p := e.plan()
	e.state = Committing
	e.mu.Unlock()

	run := &commitRun{idMap: map[uint64]string{}}
	items, stepErr := e.execute(context.WithoutCancel(ctx), p, run)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Loaded

	if stepErr != nil {
		e.retire(run)
		e.log.Error("commit failed",
			zap.String("step", string(stepErr.Step)),
			zap.String("id", stepErr.ID.String()),
			zap.Int("applied", run.applied),
			zap.Error(stepErr.Err))
		if run.applied > 0 {
			return nil, &PartialCommitError{Completed: run.completed, Applied: run.applied, Err: stepErr}
		}
		return nil, stepErr
	}

	e.replace(items)
	e.log.Debug("commit done", zap.Int("applied", run.applied), zap.Int("items", len(e.items)))
	return e.values(), nil
}

func (e *Editor[T]) plan() plan[T] {
	p := plan[T]{
		deletes: append([]string(nil), e.deleted...),
		order:   e.cloneRows(e.items),
	}

	for _, temp := range e.created {
		if i := e.indexOf(Temporary(temp)); i >= 0 {
			p.creates = append(p.creates, Row[T]{ID: Temporary(temp), Item: e.clone(e.items[i].Item)})
		}
	}
	for _, sid := range e.updated {
		if i := e.indexOf(Persisted(sid)); i >= 0 {
			p.updates = append(p.updates, Row[T]{ID: Persisted(sid), Item: e.clone(e.items[i].Item)})
		}
	}
	if e.defaultID != nil {
		id := *e.defaultID
		p.defaultID = &id
	}
	return p
}

func (e *Editor[T]) execute(ctx context.Context, p plan[T], run *commitRun) ([]T, *CommitStepError) {
	if err := e.runCreates(ctx, p.creates, run); err != nil {
		return nil, err
	}
	run.completed = append(run.completed, StepCreate)

	for _, r := range p.updates {
		sid, _ := r.ID.Server()
		e.log.Debug("commit update", zap.String("id", sid))
		if _, err := e.remote.Update(ctx, sid, r.Item); err != nil {
			return nil, &CommitStepError{Step: StepUpdate, ID: r.ID, Err: err}
		}
		run.applied++
		run.updated = append(run.updated, sid)
	}
	run.completed = append(run.completed, StepUpdate)

	for _, sid := range p.deletes {
		e.log.Debug("commit delete", zap.String("id", sid))
		if err := e.remote.Delete(ctx, sid); err != nil {
			return nil, &CommitStepError{Step: StepDelete, ID: Persisted(sid), Err: err}
		}
		run.applied++
		run.deleted = append(run.deleted, sid)
	}
	run.completed = append(run.completed, StepDelete)

	if p.defaultID != nil {
		if sid, ok := run.resolve(*p.defaultID); ok {
			e.log.Debug("commit default", zap.String("id", sid))
			if err := e.remote.SetDefault(ctx, sid); err != nil {
				return nil, &CommitStepError{Step: StepDefault, ID: *p.defaultID, Err: err}
			}
			run.applied++
		}
	}
	run.completed = append(run.completed, StepDefault)

	positions := make([]Position, 0, len(p.order))
	for i, r := range p.order {
		sid, ok := run.resolve(r.ID)
		if !ok {
			continue
		}
		pos := Position{ID: sid, SortOrder: i}
		if e.traits.hasDefault() {
			pos.IsDefault = e.traits.IsDefault(r.Item)
		}
		positions = append(positions, pos)
	}

	e.log.Debug("commit reorder", zap.Int("positions", len(positions)))
	items, err := e.remote.Reorder(ctx, positions)
	if err != nil {
		return nil, &CommitStepError{Step: StepReorder, Err: err}
	}
	run.applied++
	run.completed = append(run.completed, StepReorder)

	return e.dedupe(items), nil
}

// runCreates manda los creates en paralelo; al volver, idMap tiene todos los
// que el servidor aceptó, aunque otro haya fallado. Un fallo no corta a los
// demás: cada create termina y queda registrado antes de la barrera.
func (e *Editor[T]) runCreates(ctx context.Context, creates []Row[T], run *commitRun) *CommitStepError {
	if len(creates) == 0 {
		return nil
	}

	var (
		mu       sync.Mutex
		firstErr *CommitStepError
	)

	var g errgroup.Group
	g.SetLimit(e.createConcurrency)

	for _, r := range creates {
		g.Go(func() error {
			e.log.Debug("commit create", zap.String("temp_id", r.ID.String()))
			created, err := e.remote.Create(ctx, r.Item)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = &CommitStepError{Step: StepCreate, ID: r.ID, Err: err}
				}
				return err
			}
			run.idMap[r.ID.temp] = e.traits.ID(created)
			run.applied++
			return nil
		})
	}

	// el error ya quedó en firstErr con el id del elemento
	_ = g.Wait()
	return firstErr
}

func (run *commitRun) resolve(id ID) (string, bool) {
	if sid, ok := id.Server(); ok {
		return sid, true
	}
	sid, ok := run.idMap[id.temp]
	return sid, ok
}

// retire saca de lo pendiente lo que ya se aplicó en un commit fallido.
// Debe llamarse con el lock tomado.
func (e *Editor[T]) retire(run *commitRun) {
	for temp, sid := range run.idMap {
		if i := e.indexOf(Temporary(temp)); i >= 0 {
			e.items[i].ID = Persisted(sid)
		}
		e.created = removeValue(e.created, temp)
		if e.defaultID != nil && *e.defaultID == Temporary(temp) {
			resolved := Persisted(sid)
			e.defaultID = &resolved
		}
	}
	for _, sid := range run.updated {
		delete(e.updatedSet, sid)
		e.updated = removeValue(e.updated, sid)
	}
	for _, sid := range run.deleted {
		e.deleted = removeValue(e.deleted, sid)
	}
	for _, s := range run.completed {
		if s == StepDefault {
			e.defaultID = nil
		}
	}
}
