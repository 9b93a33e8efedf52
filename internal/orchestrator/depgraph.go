// Package orchestrator implements JobOrchestrator (§4.9): iterating jobs in
// dependency order, running each job's full pipeline, and aggregating
// status under the set's stop-on-error policy.
package orchestrator

import (
	"sort"
	"strings"

	"github.com/eastfield/archivist/internal/model"
)

// TopoSort orders jobNames so that every job appears after everything in
// its DependsOnJobs (Kahn's algorithm), per §4.9's JobDependencyManager.
// A dependency naming a job outside jobNames is ignored — DependsOnJobs may
// reference a job that sits in a different set or isn't part of this run.
func TopoSort(jobNames []string, dependsOn map[string][]string) ([]string, error) {
	inSet := make(map[string]bool, len(jobNames))
	for _, n := range jobNames {
		inSet[n] = true
	}

	indegree := make(map[string]int, len(jobNames))
	dependents := make(map[string][]string, len(jobNames))
	for _, n := range jobNames {
		indegree[n] = 0
	}
	for _, n := range jobNames {
		for _, dep := range dependsOn[n] {
			if !inSet[dep] {
				continue
			}
			indegree[n]++
			dependents[dep] = append(dependents[dep], n)
		}
	}

	var ready []string
	for _, n := range jobNames {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}
	// Deterministic ordering among equally-ready jobs: original input order.
	sort.SliceStable(ready, func(i, j int) bool {
		return indexOf(jobNames, ready[i]) < indexOf(jobNames, ready[j])
	})

	var ordered []string
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		ordered = append(ordered, next)

		var freed []string
		for _, d := range dependents[next] {
			indegree[d]--
			if indegree[d] == 0 {
				freed = append(freed, d)
			}
		}
		sort.SliceStable(freed, func(i, j int) bool {
			return indexOf(jobNames, freed[i]) < indexOf(jobNames, freed[j])
		})
		ready = append(ready, freed...)
	}

	if len(ordered) != len(jobNames) {
		return nil, model.ConfigError("dependency cycle detected among jobs: %s", strings.Join(cycleMembers(jobNames, ordered), ", "))
	}
	return ordered, nil
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

// cycleMembers returns jobNames minus whatever TopoSort managed to order,
// i.e. the jobs still stuck with a nonzero indegree, so the ConfigError can
// name the cycle's members.
func cycleMembers(jobNames, ordered []string) []string {
	done := make(map[string]bool, len(ordered))
	for _, n := range ordered {
		done[n] = true
	}
	var stuck []string
	for _, n := range jobNames {
		if !done[n] {
			stuck = append(stuck, n)
		}
	}
	return stuck
}
