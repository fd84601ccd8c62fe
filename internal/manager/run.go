package manager

import "context"

// Load fetches the whole collection and replaces the list.
func (m *Manager) Load(ctx context.Context, api API) Result {
	if err := m.BeginLoad(); err != nil {
		return Result{Op: OpLoad, Err: err}
	}
	plans, err := api.List(ctx)
	return m.FinishLoad(plans, err)
}

// Create submits the current draft.
func (m *Manager) Create(ctx context.Context, api API) Result {
	in, err := m.BeginCreate()
	if err != nil {
		return Result{Op: OpCreate, Err: err}
	}
	created, err := api.Create(ctx, in)
	return m.FinishCreate(created, err)
}

// Save submits the edit buffer as a full replacement of the edited row.
func (m *Manager) Save(ctx context.Context, api API) Result {
	id, in, err := m.BeginSave()
	if err != nil {
		return Result{Op: OpSave, PlanID: id, Err: err}
	}
	updated, err := api.Update(ctx, id, in)
	return m.FinishSave(id, updated, err)
}

// Delete removes the plan once the server confirms.
func (m *Manager) Delete(ctx context.Context, api API, id int64) Result {
	if err := m.BeginDelete(id); err != nil {
		return Result{Op: OpDelete, PlanID: id, Err: err}
	}
	return m.FinishDelete(id, api.Delete(ctx, id))
}
