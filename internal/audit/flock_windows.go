//go:build windows

package audit

import "os"

// lockFile is a no-op on Windows; the in-process mutex still serializes
// appends from one process.
func lockFile(_ *os.File) error   { return nil }
func unlockFile(_ *os.File) error { return nil }
