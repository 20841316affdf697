package utils

import "strings"

// wildcardLabel is the leftmost label that marks a wildcard owner name.
const wildcardLabel = "*"

// IsSubdomain reports whether child equals parent or sits below it.
// Both names must already be canonical. The root ("") encloses every name.
func IsSubdomain(child, parent string) bool {
	if parent == "" {
		return true
	}
	if child == parent {
		return true
	}
	return strings.HasSuffix(child, "."+parent)
}

// ParentName strips the leftmost label of a canonical name.
// The parent of a single-label name is the root (""); the root has no parent
// and ok is false. Names must not contain escaped dots.
func ParentName(name string) (parent string, ok bool) {
	if name == "" {
		return "", false
	}
	idx := strings.IndexByte(name, '.')
	if idx < 0 {
		return "", true
	}
	return name[idx+1:], true
}

// IsWildcard reports whether the canonical name is a wildcard owner ("*.<suffix>").
func IsWildcard(name string) bool {
	return name == wildcardLabel || strings.HasPrefix(name, wildcardLabel+".")
}

// WildcardSuffix returns the suffix a wildcard owner name covers,
// e.g. "example.com" for "*.example.com". ok is false for non-wildcard names.
func WildcardSuffix(name string) (suffix string, ok bool) {
	if !IsWildcard(name) {
		return "", false
	}
	if name == wildcardLabel {
		return "", true
	}
	return strings.TrimPrefix(name, wildcardLabel+"."), true
}
