package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// lookup parses the trimmed value of k, falling back to def when the
// variable is unset or parse fails.
func lookup[T any](k string, def T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(k)
	if raw = strings.TrimSpace(raw); !ok || raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func Env(k, def string) string {
	return lookup(k, def, func(s string) (string, error) { return s, nil })
}

// MustEnv panics when k is unset or blank.
func MustEnv(k string) string {
	if v := Env(k, ""); v != "" {
		return v
	}
	panic("missing env: " + k)
}

func BoolEnv(k string, def bool) bool { return lookup(k, def, strconv.ParseBool) }

func IntEnv(k string, def int) int { return lookup(k, def, strconv.Atoi) }

// DurationEnv accepts Go durations ("750ms") or whole seconds ("3").
func DurationEnv(k string, def time.Duration) time.Duration {
	return lookup(k, def, func(s string) (time.Duration, error) {
		if n, err := strconv.Atoi(s); err == nil {
			return time.Duration(n) * time.Second, nil
		}
		return time.ParseDuration(s)
	})
}
