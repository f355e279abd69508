package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/rewind/pkg/domain"
)

// Report lists structural warnings about a definition. Unlike Config.Validate
// failures, none of them stop a machine from working.
type Report struct {
	// Unreachable states cannot be entered by triggers from the initial state
	// (ChangeState can still reach them).
	Unreachable []string
	// DeadEnds are reachable states without outgoing transitions.
	DeadEnds []string
}

// Clean reports whether there is nothing to warn about.
func (r Report) Clean() bool {
	return len(r.Unreachable) == 0 && len(r.DeadEnds) == 0
}

// Warnings renders the report as one line per finding.
func (r Report) Warnings() []string {
	var out []string
	for _, s := range r.Unreachable {
		out = append(out, fmt.Sprintf("state '%s' is unreachable from the initial state", s))
	}
	for _, s := range r.DeadEnds {
		out = append(out, fmt.Sprintf("state '%s' has no outgoing transitions", s))
	}
	return out
}

func (r Report) String() string {
	return strings.Join(r.Warnings(), "\n")
}

// Analyze crawls the transition graph from the initial state.
// Results follow declaration order. Targets missing from the definition are
// skipped; Config.Validate reports those.
func Analyze(cfg *domain.Config) Report {
	var report Report
	if cfg == nil {
		return report
	}

	visited := make(map[string]bool)
	queue := []string{cfg.Initial}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		def, ok := cfg.Lookup(current)
		if !ok {
			continue
		}
		visited[current] = true

		for _, t := range def.Transitions {
			if !visited[t.Target] {
				queue = append(queue, t.Target)
			}
		}
	}

	for _, def := range cfg.States {
		switch {
		case !visited[def.Name]:
			report.Unreachable = append(report.Unreachable, def.Name)
		case len(def.Transitions) == 0:
			report.DeadEnds = append(report.DeadEnds, def.Name)
		}
	}
	return report
}
