package cmd

import (
	"fmt"
	"strings"
)

// parseHeader splits "Name: value".
func parseHeader(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.ContainsAny(name, " \t") {
		return "", "", fmt.Errorf("invalid header %q (expected 'Name: value')", s)
	}
	return name, strings.TrimSpace(value), nil
}

// parseAssignment splits "key=value". The value may be empty or contain '='.
func parseAssignment(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid assignment %q (expected key=value)", s)
	}
	return key, value, nil
}
