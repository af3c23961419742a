package flywheel

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
)

const maxWarnPoints = 100

// Registry holds registered Families and expands them into Instances on
// demand. The zero value is ready to use; a single process-wide instance
// (defaultRegistry) backs the package-level RegisterBenchmark/
// FindBenchmarks/ClearRegistry.
type Registry struct {
	mu       sync.Mutex
	families []*Family
}

var defaultRegistry = &Registry{}

// RegisterBenchmark registers a benchmark family on the default registry
// and returns it, so its fields can be mutated directly before the first
// Find call.
func RegisterBenchmark(name string, body BenchmarkFunc, opts ...Option) *Family {
	return defaultRegistry.Register(name, body, opts...)
}

// ClearRegistry drops all registered families from the default registry.
// Intended for tests.
func ClearRegistry() { defaultRegistry.Clear() }

// FindBenchmarks expands the default registry's families against spec.
func FindBenchmarks(spec string, warnOut io.Writer) ([]*Instance, error) {
	return defaultRegistry.Find(spec, warnOut)
}

// Register appends a new family under the given name and body.
func (r *Registry) Register(name string, body BenchmarkFunc, opts ...Option) *Family {
	f := &Family{Name: name, Body: body}
	for _, opt := range opts {
		opt(f)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.families = append(r.families, f)
	return f
}

// Clear drops all registered families.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.families = nil
}

// Find compiles spec into a regex (a leading '-' inverts the match; "" or
// "all" match everything) and returns every Instance whose rendered name
// matches. Family indices are assigned densely, in the order each family
// first contributes a kept instance.
func (r *Registry) Find(spec string, warnOut io.Writer) ([]*Instance, error) {
	pattern, negate := parseFilterSpec(spec)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, newError(KindBadRegex, fmt.Sprintf("invalid --benchmark_filter %q", spec), err)
	}

	r.mu.Lock()
	families := append([]*Family(nil), r.families...)
	r.mu.Unlock()

	var out []*Instance
	nextFamilyIndex := 0
	for _, f := range families {
		if err := f.validate(); err != nil {
			return nil, err
		}
		argLists := f.ArgLists
		if len(argLists) == 0 {
			argLists = [][]int64{{}}
		}
		threadCounts := f.ThreadCounts
		if len(threadCounts) == 0 {
			threadCounts = []int{1}
		}

		total := len(argLists) * len(threadCounts)
		if total > maxWarnPoints && warnOut != nil {
			fmt.Fprintf(warnOut, "flywheel: warning: family %q expands to %d instances\n", f.Name, total)
		}

		familyIndexUsed := false
		perFamilyIndex := 0
		for _, args := range argLists {
			for _, nThreads := range threadCounts {
				name := buildName(f, args, nThreads)
				if re.MatchString(name) == negate {
					continue
				}
				if !familyIndexUsed {
					familyIndexUsed = true
				}
				out = append(out, &Instance{
					Family:         f,
					FamilyIndex:    nextFamilyIndex,
					PerFamilyIndex: perFamilyIndex,
					Args:           append([]int64(nil), args...),
					NumThreads:     nThreads,
					Name:           name,
				})
				perFamilyIndex++
			}
		}
		if familyIndexUsed {
			nextFamilyIndex++
		}
	}
	return out, nil
}

// parseFilterSpec splits a --benchmark_filter value into a regex pattern
// and whether the match should be inverted.
func parseFilterSpec(spec string) (pattern string, negate bool) {
	if spec == "" || spec == "all" {
		return ".", false
	}
	if strings.HasPrefix(spec, "-") {
		return spec[1:], true
	}
	return spec, false
}
