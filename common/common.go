package common

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Splits a comma separated string consisting of key value pairs,
// e.g. "k1=v1,k2=v2", into a map. Malformed pairs are skipped.
func SplitCommaSepToMap(commaSepString string) map[string]string {
	m := make(map[string]string)
	for _, pair := range strings.Split(commaSepString, ",") {
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			continue
		}
		m[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return m
}

// ParseFloatMap parses "name=number,..." pairs, e.g. a ledger given on the
// command line as "nano1=512,orin=1024".
func ParseFloatMap(commaSepString string) (map[string]float64, error) {
	out := map[string]float64{}
	for k, v := range SplitCommaSepToMap(commaSepString) {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "value for %q", k)
		}
		out[k] = f
	}
	return out, nil
}
