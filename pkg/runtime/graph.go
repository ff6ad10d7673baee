package runtime

import (
	"fmt"
	"sort"

	"github.com/modkit-dev/modkit/pkg/module"
)

// order computes a deterministic dependency-respecting order over
// descriptors (spec §4.1 "Dependency resolution"). Missing dependencies
// and cycles are both fatal configuration errors — reported with the
// full cycle path so the operator does not have to reconstruct it by
// hand.
func order(descs []module.Descriptor) ([]module.Descriptor, error) {
	byName := make(map[string]module.Descriptor, len(descs))
	for _, d := range descs {
		byName[d.Name] = d
	}

	for _, d := range descs {
		for _, dep := range d.Dependencies {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("runtime: module %q depends on unregistered module %q", d.Name, dep)
			}
		}
	}

	const (
		white = 0 // unvisited
		gray  = 1 // on the current DFS stack
		black = 2 // finished
	)

	color := make(map[string]int, len(descs))
	var out []module.Descriptor

	// Sort module names up front so iteration (and therefore the
	// resulting order among unrelated modules) is stable across runs.
	names := make([]string, 0, len(descs))
	for _, d := range descs {
		names = append(names, d.Name)
	}
	sort.Strings(names)

	var visit func(name string, stack []string) error
	visit = func(name string, stack []string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("runtime: dependency cycle: %s", cyclePath(stack, name))
		}

		color[name] = gray
		stack = append(stack, name)

		d := byName[name]
		deps := append([]string(nil), d.Dependencies...)
		sort.Strings(deps)

		for _, dep := range deps {
			if err := visit(dep, stack); err != nil {
				return err
			}
		}

		color[name] = black
		out = append(out, d)

		return nil
	}

	for _, name := range names {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// cyclePath renders stack + closing back to name as "a -> b -> c -> a".
func cyclePath(stack []string, name string) string {
	path := append(append([]string(nil), stack...), name)

	start := 0
	for i, n := range path {
		if n == name && i < len(path)-1 {
			start = i
			break
		}
	}
	path = path[start:]

	out := path[0]
	for _, n := range path[1:] {
		out += " -> " + n
	}

	return out
}
