package sandbox

import (
	"strings"

	"github.com/cabinet-platform/kernel/internal/domain/ipc"
)

// reservedTree is the subtree no module may ever touch. The check cannot be
// disabled by configuration.
const reservedTree = "system/intent/"

// Access distinguishes read from write permission decisions.
type Access int

// Access kinds.
const (
	AccessRead Access = iota
	AccessWrite
)

// ValidatePath decides whether a module may access path. The checks run in a
// fixed order: traversal detection, forbidden-prefix denial, lexical
// canonicalization, the allowed/readonly permission decision, and the
// unconditional reserved-tree block. Error messages never echo the offending
// path.
func ValidatePath(path string, limits *ModuleLimits, config *FilesystemConfig, access Access) error {
	if config.DetectPathTraversal && containsTraversal(path) {
		return ipc.NewError(ipc.CodeSecurityViolation, "path traversal detected")
	}

	for _, forbidden := range config.ForbiddenPaths {
		if strings.HasPrefix(path, forbidden) {
			return ipc.NewError(ipc.CodeSecurityViolation, "access to forbidden path denied")
		}
	}

	checkPath := path
	if config.ValidateCanonicalPaths {
		canonical, err := CanonicalizePath(path)
		if err != nil {
			return err
		}
		checkPath = canonical
	}

	inAllowed := hasAnyPrefix(checkPath, limits.AllowedFilePaths)
	switch access {
	case AccessWrite:
		if !inAllowed {
			return ipc.NewError(ipc.CodeSecurityViolation, "write access outside allowed paths")
		}
	case AccessRead:
		if !inAllowed && !hasAnyPrefix(checkPath, limits.ReadonlyPaths) {
			return ipc.NewError(ipc.CodeSecurityViolation, "read access outside allowed paths")
		}
	}

	if err := CheckReservedTree(path); err != nil {
		return err
	}
	return CheckReservedTree(checkPath)
}

// CheckReservedTree denies any path touching the reserved intent subtree,
// regardless of configuration.
func CheckReservedTree(path string) error {
	if strings.Contains(path, reservedTree) {
		return ipc.NewError(ipc.CodeSecurityViolation, "access to reserved tree denied")
	}
	return nil
}

// containsTraversal reports whether path carries a dot-dot sequence in any of
// the forms that survive naive normalization.
func containsTraversal(path string) bool {
	return strings.Contains(path, "../") ||
		strings.Contains(path, "/..") ||
		strings.Contains(path, `..\`) ||
		strings.Contains(path, `\..`)
}

// CanonicalizePath resolves "." and ".." purely lexically, without touching
// the filesystem. A ".." that would climb past the root is a violation.
func CanonicalizePath(path string) (string, error) {
	var components []string
	for _, component := range strings.Split(path, "/") {
		switch component {
		case "", ".":
			continue
		case "..":
			if len(components) == 0 {
				return "", ipc.NewError(ipc.CodeSecurityViolation, "path escapes root")
			}
			components = components[:len(components)-1]
		default:
			components = append(components, component)
		}
	}
	return "/" + strings.Join(components, "/"), nil
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
