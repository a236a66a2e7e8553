package printer

import (
	"fmt"
	"strconv"
	"strings"
)

const progressBarWidth = 10

// FormatHours returns a human-readable amount of hours.
// Examples: "-", "4h", "1.5h".
func FormatHours(h float64) string {
	if h <= 0 {
		return "-"
	}
	return strconv.FormatFloat(h, 'f', -1, 64) + "h"
}

// ProgressBar returns a fixed width text progress bar.
// Example: "[#####-----]  50%".
func ProgressBar(progress int) string {
	progress = max(0, min(progress, 100))
	filled := progress * progressBarWidth / 100
	return fmt.Sprintf("[%s%s] %3d%%", strings.Repeat("#", filled), strings.Repeat("-", progressBarWidth-filled), progress)
}

// TaskDepth returns the tree depth of a task based on its WBS code, root tasks are 0.
func TaskDepth(wbsCode string) int {
	if wbsCode == "" {
		return 0
	}
	return strings.Count(wbsCode, ".")
}
