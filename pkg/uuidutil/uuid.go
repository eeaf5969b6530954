// Package uuidutil generates and checks transaction identifiers.
package uuidutil

import (
	"fmt"

	"github.com/google/uuid"
)

// NewV4 generates a random UUID v4 string.
func NewV4() string {
	return uuid.NewString()
}

// Check returns an error if s is not a UUID in canonical textual form.
func Check(s string) error {
	u, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	if u.String() != s {
		return fmt.Errorf("not in canonical form, want %s", u.String())
	}
	return nil
}
