package stats

import (
	"fmt"
	"sort"
	"strings"
	"testing"
)

// RuleChecker compares a rendered stat value (got) against an expected one.
type RuleChecker struct {
	name    string
	checker func(got, want interface{}) bool
}

func bothOrNeither(got, want interface{}) (decided, equal bool) {
	switch {
	case got == nil && want == nil:
		return true, true
	case got == nil || want == nil:
		return true, false
	}
	return false, false
}

// FloatEqTest passes when a float64 stat equals the float64 rule value.
var FloatEqTest = RuleChecker{name: "floatEq", checker: func(got, want interface{}) bool {
	if decided, eq := bothOrNeither(got, want); decided {
		return eq
	}
	return got.(float64) == want.(float64)
}}

// FloatGTTest passes when a float64 stat is greater than the rule value.
var FloatGTTest = RuleChecker{name: "floatGT", checker: func(got, want interface{}) bool {
	if decided, eq := bothOrNeither(got, want); decided {
		return eq
	}
	return got.(float64) > want.(float64)
}}

// Int64EqTest passes when an int64 stat equals the int rule value.
var Int64EqTest = RuleChecker{name: "int64Eq", checker: func(got, want interface{}) bool {
	if decided, eq := bothOrNeither(got, want); decided {
		return eq
	}
	return got.(int64) == int64(want.(int))
}}

// DoesNotExistTest passes when the stat was never registered.
var DoesNotExistTest = RuleChecker{name: "doesNotExist", checker: func(got, _ interface{}) bool {
	return got == nil
}}

type Rule struct {
	Checker RuleChecker
	Value   interface{}
}

// VerifyStats checks each rule against the rendered registry, which must
// come from NewFinagleStatsRegistry, and fails t listing every broken rule.
func VerifyStats(tag string, registry StatsRegistry, t *testing.T, rules map[string]Rule) {
	t.Helper()
	fr, ok := registry.(*finagleStatsRegistry)
	if !ok {
		t.Fatalf("%s: VerifyStats needs a finagle registry, got %T", tag, registry)
	}
	rendered := fr.MarshalAll()

	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var failures []string
	for _, key := range keys {
		rule := rules[key]
		got := rendered[key]
		if rule.Checker.checker(got, rule.Value) {
			continue
		}
		if rule.Checker.name == DoesNotExistTest.name {
			failures = append(failures, fmt.Sprintf("%s: present with %v, expected absent", key, got))
		} else {
			failures = append(failures, fmt.Sprintf("%s: got %v, expected %s %v", key, got, rule.Checker.name, rule.Value))
		}
	}
	if len(failures) > 0 {
		pretty, _ := fr.MarshalJSONPretty()
		t.Errorf("%s: stats mismatch:\n%s\nregistry:\n%s", tag, strings.Join(failures, "\n"), pretty)
	}
}
