package progress

import "github.com/slok/wbs/internal/model"

// Tree is an arena of the tasks of a project indexed by id and by parent.
// Walks are index lookups, the parent graph is expected to be acyclic.
type Tree struct {
	nodes    map[string]model.TaskSummary
	children map[string][]string // Parent ID -> child IDs, roots are under "".
}

// NewTree returns a tree from a flat list of tasks. Children keep the
// order of the received list.
func NewTree(tasks []model.TaskSummary) *Tree {
	t := &Tree{
		nodes:    make(map[string]model.TaskSummary, len(tasks)),
		children: map[string][]string{},
	}
	for _, task := range tasks {
		t.nodes[task.ID] = task
		t.children[task.ParentID] = append(t.children[task.ParentID], task.ID)
	}
	return t
}

// Len returns the number of tasks in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Get returns a task of the tree.
func (t *Tree) Get(id string) (model.TaskSummary, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Children returns the direct children of a task.
func (t *Tree) Children(id string) []model.TaskSummary {
	ids := t.children[id]
	res := make([]model.TaskSummary, 0, len(ids))
	for _, cid := range ids {
		res = append(res, t.nodes[cid])
	}
	return res
}

// Roots returns the tasks without parent.
func (t *Tree) Roots() []model.TaskSummary { return t.Children("") }

// BreadthFirst returns the IDs of the received tasks and all their
// descendants in breadth first visitation order.
func (t *Tree) BreadthFirst(fromIDs ...string) []string {
	order := make([]string, 0, len(t.nodes))
	queue := make([]string, 0, len(fromIDs))
	for _, id := range fromIDs {
		if _, ok := t.nodes[id]; ok {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		queue = append(queue, t.children[id]...)
	}

	return order
}

// Fold recalculates the status and progress of the received tasks and their
// descendants, deepest first, so every task is computed from already
// correct children. Returns the number of visited tasks and the tasks that
// changed.
func (t *Tree) Fold(fromIDs ...string) (visited int, changed []model.TaskSummary) {
	order := t.BreadthFirst(fromIDs...)
	changedIdx := map[string]int{}

	for i := len(order) - 1; i >= 0; i-- {
		node := t.nodes[order[i]]
		status, progress, ok := Rollup(node, t.Children(node.ID))
		if !ok || (status == node.Status && progress == node.ProgressPercentage) {
			continue
		}

		node.Status = status
		node.ProgressPercentage = progress
		t.nodes[node.ID] = node

		if idx, ok := changedIdx[node.ID]; ok {
			changed[idx] = node
			continue
		}
		changedIdx[node.ID] = len(changed)
		changed = append(changed, node)
	}

	return len(order), changed
}

// FoldAll folds the whole tree starting from the roots.
func (t *Tree) FoldAll() (visited int, changed []model.TaskSummary) {
	return t.Fold(t.children[""]...)
}
