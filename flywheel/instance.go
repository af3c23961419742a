package flywheel

import (
	"fmt"
	"strconv"
	"strings"
)

// Instance is one concrete (Family, args, thread count) point produced by
// Registry.Find. Instances are immutable after creation.
type Instance struct {
	Family         *Family
	FamilyIndex    int
	PerFamilyIndex int
	Args           []int64
	NumThreads     int
	Name           string
}

// buildName renders the canonical instance name:
// family[/arg1[/arg2...]]["/threads:n"], with name substitution when the
// family provides ArgNames.
func buildName(f *Family, args []int64, numThreads int) string {
	var b strings.Builder
	b.WriteString(f.Name)
	for i, a := range args {
		b.WriteByte('/')
		if i < len(f.ArgNames) && f.ArgNames[i] != "" {
			b.WriteString(f.ArgNames[i])
			b.WriteByte(':')
		}
		b.WriteString(strconv.FormatInt(a, 10))
	}
	if numThreads > 1 {
		fmt.Fprintf(&b, "/threads:%d", numThreads)
	}
	return b.String()
}
