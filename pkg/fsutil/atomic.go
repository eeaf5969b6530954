// Package fsutil provides filesystem utilities for atomic replacement and syncing.
package fsutil

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// TmpPrefix starts the name of every temporary file ReplaceFile creates.
// A leftover file with this prefix means a writer died mid-replace.
const TmpPrefix = ".reportstore-tmp-"

// ReplaceFile atomically replaces path with whatever write produces.
// Content goes to a temporary file in the same directory, is flushed and
// fsynced, gets perm, and is then renamed over path. A reader never sees a
// partial file. If write or any later step fails the temporary file is
// removed and any existing file at path is left untouched.
func ReplaceFile(path string, perm os.FileMode, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, TmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("replace file create tmp: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		return fmt.Errorf("replace file write: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("replace file flush: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("replace file chmod: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("replace file fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("replace file close: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace file rename: %w", err)
	}
	success = true

	if err := FsyncDir(dir); err != nil {
		return fmt.Errorf("replace file fsync dir: %w", err)
	}
	return nil
}

// AtomicWrite writes data to path through ReplaceFile.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	return ReplaceFile(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// EnsureDir creates dir (with parents) if it does not exist yet and then
// applies perm to dir and everything below it. An existing directory is left
// alone. It reports whether the directory was created.
func EnsureDir(dir string, perm os.FileMode) (bool, error) {
	if _, err := os.Stat(dir); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat %s: %w", dir, err)
	}

	if err := os.MkdirAll(dir, perm); err != nil {
		return false, fmt.Errorf("create dir %s: %w", dir, err)
	}
	if err := ChmodTree(dir, perm); err != nil {
		return true, err
	}
	return true, nil
}

// ChmodTree sets perm on root and every entry beneath it. Symlinks are not
// followed and entries that vanish during the walk are skipped.
func ChmodTree(root string, perm os.FileMode) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != root && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if err := os.Chmod(path, perm); err != nil {
			if path != root && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("chmod %s: %w", path, err)
		}
		return nil
	})
}

// FsyncDir fsyncs a directory to ensure rename visibility is durable.
func FsyncDir(dirPath string) error {
	d, err := os.Open(dirPath)
	if err != nil {
		return fmt.Errorf("fsync dir open: %w", err)
	}
	defer d.Close()
	return d.Sync()
}
