package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// annotationFlag collects repeated --annotate key=value pairs.
type annotationFlag map[string]string

func (a annotationFlag) String() string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+a[k])
	}
	return strings.Join(pairs, ",")
}

func (a annotationFlag) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("annotation must be key=value, got %q", value)
	}
	a[key] = strings.TrimSpace(val)
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseFloatList(raw string) ([]float64, error) {
	parts := splitList(raw)
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("parse value %q: %w", part, err)
		}
		values = append(values, v)
	}
	return values, nil
}
