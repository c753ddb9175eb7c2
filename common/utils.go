package common

import (
	uuid "github.com/nu7hatch/gouuid"
)

// GenUUID returns a random v4 uuid string. NewV4 only fails when the system
// random source does, so it is simply retried.
func GenUUID() string {
	for {
		if id, err := uuid.NewV4(); err == nil {
			return id.String()
		}
	}
}

// GenRoundID names a scheduling round, "<prefix>-<uuid>" or just the uuid.
func GenRoundID(prefix string) string {
	if prefix == "" {
		return GenUUID()
	}
	return prefix + "-" + GenUUID()
}
