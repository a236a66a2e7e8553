package model

// Plan is a project with its whole task tree, used to import projects.
type Plan struct {
	Project Project
	Tasks   []PlanTask
}

// PlanTask is a task of a plan with its children.
type PlanTask struct {
	Name               string
	Description        string
	Notes              string
	Status             TaskStatus
	Priority           TaskPriority
	EstimatedHours     float64
	ActualHours        float64
	ProgressPercentage int
	IsMilestone        bool
	Children           []PlanTask
}

// CountTasks returns the number of tasks of the plan tree.
func (p Plan) CountTasks() int {
	var count func(ts []PlanTask) int
	count = func(ts []PlanTask) int {
		n := len(ts)
		for _, t := range ts {
			n += count(t.Children)
		}
		return n
	}
	return count(p.Tasks)
}
