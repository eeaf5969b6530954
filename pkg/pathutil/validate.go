// Package pathutil validates submitter identifiers before they become path components.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/jvs-project/reportstore/pkg/errclass"
)

// separators holds every character that splits a path on any supported
// platform. Both are rejected everywhere so a report root copied between
// systems keeps the same guarantees.
const separators = `/\` + string(filepath.Separator)

// ValidateHost rejects a submitter identifier that could escape its report
// directory: anything containing a path separator, or exactly "." or "..".
// An empty identifier would resolve to the report root itself and is
// rejected as well.
func ValidateHost(host string) error {
	if host == "" {
		return errclass.ErrInvalidIdentifier.WithMessage("invalid node name: must not be empty")
	}
	if host == "." || host == ".." {
		return errclass.ErrInvalidIdentifier.WithMessagef("invalid node name %q", host)
	}
	if strings.ContainsAny(host, separators) {
		return errclass.ErrInvalidIdentifier.WithMessagef("invalid node name %q: contains a path separator", host)
	}
	return nil
}

// HostDir validates host and returns <root>/<host>.
func HostDir(root, host string) (string, error) {
	if err := ValidateHost(host); err != nil {
		return "", err
	}
	return filepath.Join(root, host), nil
}
