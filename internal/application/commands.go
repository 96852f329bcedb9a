package application

import "github.com/bnema/growth-dashboard/internal/domain"

// Action is one request to change dashboard state. Actions are handled by
// Dashboard.Dispatch, one at a time.
type Action interface {
	ActionName() string
}

type CreateAction struct {
	Item domain.Item
}

// UpdateAction replaces the stored item with the same key.
type UpdateAction struct {
	Item domain.Item
}

type DeleteAction struct {
	Key domain.Key
}

type BatchDeleteAction struct {
	Selection domain.SelectionSet
}

type UndoAction struct{}

type RedoAction struct{}

// ImportAction replaces all three collections with an already decoded
// document.
type ImportAction struct {
	Snapshot domain.Snapshot
}

func (CreateAction) ActionName() string      { return "create" }
func (UpdateAction) ActionName() string      { return "update" }
func (DeleteAction) ActionName() string      { return "delete" }
func (BatchDeleteAction) ActionName() string { return "batch_delete" }
func (UndoAction) ActionName() string        { return "undo" }
func (RedoAction) ActionName() string        { return "redo" }
func (ImportAction) ActionName() string      { return "import" }

// Result reports what a dispatched action did. Changed is false for
// mutations that matched nothing; those are not committed.
type Result struct {
	Action   string
	Changed  bool
	Snapshot domain.Snapshot
	Item     domain.Item
	Removed  int
	Changes  []domain.Change
	Tokens   []string
}
