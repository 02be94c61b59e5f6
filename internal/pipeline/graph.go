// Package pipeline coordinates a fixed stage graph of fallible
// analysis tasks: one critical seed task, a concurrent fan-out of
// independent tasks, an ordered dependent chain, and a terminal
// synthesis task. Coordination is data-driven: the graph is validated
// once and then walked by the coordinator.
package pipeline

import (
	"fmt"

	"github.com/gammazero/toposort"
)

// Graph is a validated, immutable set of task descriptors. Construct
// with NewGraph; the declared task order fixes the dependent chain
// order.
type Graph struct {
	tasks        map[string]*Task
	declared     []*Task // all tasks in declaration order
	critical     *Task
	independents []*Task
	dependents   []*Task // declaration order == execution order
	terminal     *Task
}

// NewGraph validates the task set and returns the graph. Rules:
// exactly one critical task; at most one terminal task; critical,
// independent, and terminal tasks declare no dependencies; dependent
// tasks may depend on the critical task, independent tasks, and
// dependents declared before them.
func NewGraph(tasks ...*Task) (*Graph, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("graph has no tasks")
	}

	g := &Graph{tasks: make(map[string]*Task, len(tasks))}

	for _, t := range tasks {
		if t.Name == "" {
			return nil, fmt.Errorf("task with empty name")
		}
		if t.Provider == nil {
			return nil, fmt.Errorf("task %q has no provider", t.Name)
		}
		if t.Schema == nil {
			return nil, fmt.Errorf("task %q has no output schema", t.Name)
		}
		if t.Default == nil {
			return nil, fmt.Errorf("task %q has no default value", t.Name)
		}
		if _, exists := g.tasks[t.Name]; exists {
			return nil, fmt.Errorf("task %q declared twice", t.Name)
		}
		g.tasks[t.Name] = t
		g.declared = append(g.declared, t)

		switch t.Role {
		case RoleCritical:
			if g.critical != nil {
				return nil, fmt.Errorf("more than one critical task (%q and %q)", g.critical.Name, t.Name)
			}
			g.critical = t
		case RoleIndependent:
			g.independents = append(g.independents, t)
		case RoleDependent:
			g.dependents = append(g.dependents, t)
		case RoleTerminal:
			if g.terminal != nil {
				return nil, fmt.Errorf("more than one terminal task (%q and %q)", g.terminal.Name, t.Name)
			}
			g.terminal = t
		default:
			return nil, fmt.Errorf("task %q has unknown role %v", t.Name, t.Role)
		}
	}

	if g.critical == nil {
		return nil, fmt.Errorf("graph has no critical task")
	}

	if err := g.checkDependencies(); err != nil {
		return nil, err
	}
	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}

	return g, nil
}

// checkDependencies enforces the per-role dependency rules.
func (g *Graph) checkDependencies() error {
	for _, t := range g.declared {
		if t.Role != RoleDependent && len(t.DependsOn) > 0 {
			return fmt.Errorf("%s task %q must not declare dependencies", t.Role, t.Name)
		}
	}

	// Index of each dependent in the declared chain, for forward-
	// reference detection.
	chainIndex := make(map[string]int, len(g.dependents))
	for i, t := range g.dependents {
		chainIndex[t.Name] = i
	}

	for i, t := range g.dependents {
		if len(t.DependsOn) == 0 {
			return fmt.Errorf("dependent task %q declares no dependencies", t.Name)
		}
		for _, dep := range t.DependsOn {
			upstream, ok := g.tasks[dep]
			if !ok {
				return fmt.Errorf("task %q depends on non-existent task %q", t.Name, dep)
			}
			switch upstream.Role {
			case RoleCritical, RoleIndependent:
				// Always resolved before the chain starts.
			case RoleDependent:
				if chainIndex[dep] >= i {
					return fmt.Errorf("task %q depends on %q, which is not declared before it in the chain", t.Name, dep)
				}
			case RoleTerminal:
				return fmt.Errorf("task %q depends on terminal task %q", t.Name, dep)
			}
		}
	}
	return nil
}

// checkAcyclic runs a topological sort over the dependent chain edges.
// Forward-reference checking already rules out cycles for valid
// declarations; the sort catches anything the role rules missed.
func (g *Graph) checkAcyclic() error {
	var edges []toposort.Edge
	for _, t := range g.dependents {
		if len(t.DependsOn) == 0 {
			edges = append(edges, toposort.Edge{nil, t.Name})
			continue
		}
		for _, dep := range t.DependsOn {
			edges = append(edges, toposort.Edge{dep, t.Name})
		}
	}

	if _, err := toposort.Toposort(edges); err != nil {
		return fmt.Errorf("dependency cycle: %w", err)
	}
	return nil
}

// Critical returns the single critical task.
func (g *Graph) Critical() *Task { return g.critical }

// Independents returns the fan-out tasks in declaration order.
func (g *Graph) Independents() []*Task {
	return append([]*Task(nil), g.independents...)
}

// DependentsInOrder returns the dependent chain in execution order.
func (g *Graph) DependentsInOrder() []*Task {
	return append([]*Task(nil), g.dependents...)
}

// Terminal returns the terminal task, or nil if none is declared.
func (g *Graph) Terminal() *Task { return g.terminal }

// Tasks returns every task in declaration order.
func (g *Graph) Tasks() []*Task {
	return append([]*Task(nil), g.declared...)
}

// Get returns a task by name.
func (g *Graph) Get(name string) (*Task, bool) {
	t, ok := g.tasks[name]
	return t, ok
}
