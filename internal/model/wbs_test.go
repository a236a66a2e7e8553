package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/wbs/internal/model"
)

func TestChildWBSCode(t *testing.T) {
	assert.Equal(t, "3", model.ChildWBSCode("", 3))
	assert.Equal(t, "1.2.10", model.ChildWBSCode("1.2", 10))
}

func TestCompareWBSCodes(t *testing.T) {
	tests := map[string]struct {
		a, b string
		exp  int
	}{
		"Equal codes.":                             {a: "1.2", b: "1.2", exp: 0},
		"Numeric segments compare as numbers.":     {a: "1.2", b: "1.10", exp: -1},
		"Parents go before their children.":        {a: "1", b: "1.1", exp: -1},
		"Children go after their parents.":         {a: "2.1", b: "2", exp: 1},
		"First segment wins.":                      {a: "10.1", b: "9.9.9", exp: 1},
		"Non numeric segments compare as strings.": {a: "1.a", b: "1.b", exp: -1},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, model.CompareWBSCodes(test.a, test.b))
		})
	}
}

func TestSortTasksByWBS(t *testing.T) {
	tasks := []model.Task{{WBSCode: "2"}, {WBSCode: "1.10"}, {WBSCode: "1"}, {WBSCode: "1.2"}, {WBSCode: "1.2.1"}}
	model.SortTasksByWBS(tasks)

	got := []string{}
	for _, t := range tasks {
		got = append(got, t.WBSCode)
	}
	assert.Equal(t, []string{"1", "1.2", "1.2.1", "1.10", "2"}, got)
}
