package model

import (
	"slices"
	"strconv"
	"strings"
)

// ChildWBSCode returns the WBS code of the nth (1 based) child of a parent
// WBS code, root tasks have an empty parent code.
func ChildWBSCode(parentCode string, n int) string {
	if parentCode == "" {
		return strconv.Itoa(n)
	}
	return parentCode + "." + strconv.Itoa(n)
}

// CompareWBSCodes compares WBS codes segment by segment, numerically when
// both segments are numbers ("1.2" < "1.10").
func CompareWBSCodes(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aErr := strconv.Atoi(as[i])
		bn, bErr := strconv.Atoi(bs[i])

		var c int
		if aErr == nil && bErr == nil {
			c = an - bn
		} else {
			c = strings.Compare(as[i], bs[i])
		}
		if c != 0 {
			if c < 0 {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}

// SortTasksByWBS sorts tasks in WBS order, parents before their children.
func SortTasksByWBS(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		return CompareWBSCodes(a.WBSCode, b.WBSCode)
	})
}
