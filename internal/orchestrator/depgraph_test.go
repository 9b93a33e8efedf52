package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopoSort_OrdersDependenciesFirst(t *testing.T) {
	jobs := []string{"c", "a", "b"}
	deps := map[string][]string{
		"b": {"a"},
		"c": {"b"},
	}
	ordered, err := TopoSort(jobs, deps)
	require.NoError(t, err)

	pos := map[string]int{}
	for i, n := range ordered {
		pos[n] = i
	}
	assert.Less(t, pos["a"], pos["b"])
	assert.Less(t, pos["b"], pos["c"])
}

func TestTopoSort_NoDependenciesPreservesInputOrder(t *testing.T) {
	jobs := []string{"x", "y", "z"}
	ordered, err := TopoSort(jobs, nil)
	require.NoError(t, err)
	assert.Equal(t, jobs, ordered)
}

func TestTopoSort_DependencyOutsideSelectionIsIgnored(t *testing.T) {
	jobs := []string{"a", "b"}
	deps := map[string][]string{"a": {"not-in-this-run"}}
	ordered, err := TopoSort(jobs, deps)
	require.NoError(t, err)
	assert.ElementsMatch(t, jobs, ordered)
}

func TestTopoSort_CycleReturnsConfigErrorNamingMembers(t *testing.T) {
	jobs := []string{"a", "b", "c"}
	deps := map[string][]string{
		"a": {"b"},
		"b": {"a"},
	}
	_, err := TopoSort(jobs, deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a")
	assert.Contains(t, err.Error(), "b")
}

func TestTopoSort_DiamondDependency(t *testing.T) {
	jobs := []string{"d", "b", "c", "a"}
	deps := map[string][]string{
		"b": {"a"},
		"c": {"a"},
		"d": {"b", "c"},
	}
	ordered, err := TopoSort(jobs, deps)
	require.NoError(t, err)

	pos := map[string]int{}
	for i, n := range ordered {
		pos[n] = i
	}
	assert.Less(t, pos["a"], pos["b"])
	assert.Less(t, pos["a"], pos["c"])
	assert.Less(t, pos["b"], pos["d"])
	assert.Less(t, pos["c"], pos["d"])
}
