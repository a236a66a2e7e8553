// Package progress has the pure rules that keep task status and progress
// consistent inside a project task tree.
package progress

import (
	"math"

	"github.com/slok/wbs/internal/model"
)

// minEffortHours is the floor applied to the estimated hours of a task when
// weighting it, a task without estimation counts as one hour.
const minEffortHours = 1.0

// AggregateResult is the result of aggregating a set of sibling tasks.
type AggregateResult struct {
	// HasChildren is false when there was nothing to aggregate, in that case
	// the rest of the fields must be ignored.
	HasChildren bool
	// WeightedProgress is the priority and effort weighted mean progress (0-100).
	WeightedProgress int
	// AllCompleted is true when every aggregated task is completed.
	AllCompleted bool
}

// Weight returns the weight a task has when aggregated on its parent.
func Weight(t model.TaskSummary) float64 {
	hours := t.EstimatedHours
	if hours <= 0 {
		hours = minEffortHours
	}
	return float64(t.Priority.Weight()) * hours
}

// Aggregate computes the weighted progress of a set of sibling tasks.
func Aggregate(tasks []model.TaskSummary) AggregateResult {
	if len(tasks) == 0 {
		return AggregateResult{HasChildren: false}
	}

	allCompleted := true
	var totalWeight, weighted float64
	for _, t := range tasks {
		w := Weight(t)
		totalWeight += w
		weighted += float64(clampProgress(t.ProgressPercentage)) * w
		if t.Status != model.TaskStatusCompleted {
			allCompleted = false
		}
	}

	progress := 0
	if totalWeight > 0 {
		progress = clampProgress(int(math.Round(weighted / totalWeight)))
	}

	return AggregateResult{
		HasChildren:      true,
		WeightedProgress: progress,
		AllCompleted:     allCompleted,
	}
}

func clampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
