package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jvs-project/reportstore/pkg/errclass"
	"github.com/jvs-project/reportstore/pkg/fsutil"
	"github.com/jvs-project/reportstore/pkg/logging"
	"github.com/jvs-project/reportstore/pkg/metrics"
	"github.com/jvs-project/reportstore/pkg/model"
	"github.com/jvs-project/reportstore/pkg/pathutil"
)

const (
	// DirPerm is applied to a host directory when it is first created.
	DirPerm os.FileMode = 0750
	// FilePerm is applied to every report file.
	FilePerm os.FileMode = 0640

	fileExt        = ".json"
	fileNameLayout = "200601021504"
)

// Diagnostics receives failures the store swallows.
type Diagnostics interface {
	LogException(msg string, err error, fields map[string]any)
}

// Store persists reports under <Root>/<host>/<YYYYMMDDHHmm>.json.
// It holds no mutable state; concurrent calls are safe.
type Store struct {
	Root    string
	Metrics *metrics.Registry

	// Diag receives swallowed write failures; the global logger when nil.
	Diag Diagnostics

	// Now is the clock used for file names; time.Now when nil.
	Now func() time.Time
}

// NewStore creates a store rooted at root.
func NewStore(root string, diag Diagnostics) *Store {
	return &Store{Root: root, Diag: diag}
}

// FileName returns the report file name for t: the UTC minute, e.g. 202403050807.json.
// Two reports from one host in the same minute share a name and the later one wins.
func FileName(t time.Time) string {
	return t.UTC().Format(fileNameLayout) + fileExt
}

func (s *Store) diag() Diagnostics {
	if s.Diag != nil {
		return s.Diag
	}
	return logging.Global()
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Process writes r and returns the destination path.
//
// An invalid host is returned as errclass.ErrInvalidIdentifier before anything
// touches the disk, and a nil report as errclass.ErrReportInvalid. Every other
// failure is reported through Diag and swallowed: the returned error is nil
// and the path is where the report would have gone.
func (s *Store) Process(r *model.Report) (string, error) {
	file, err := s.Write(r)
	if err == nil || file == "" {
		return file, err
	}
	s.diag().LogException(
		fmt.Sprintf("Could not write report for %s at %s: %v", r.Host, file, err),
		err,
		map[string]any{"host": r.Host, "path": file},
	)
	return file, nil
}

// Write is Process without the swallowing. Write failures are returned
// together with the destination path and nothing goes to Diag. Errors
// raised before the disk is touched come with an empty path.
func (s *Store) Write(r *model.Report) (string, error) {
	if r == nil {
		return "", errclass.ErrReportInvalid.WithMessage("nil report")
	}
	dir, err := pathutil.HostDir(s.Root, r.Host)
	if err != nil {
		return "", err
	}
	file := filepath.Join(dir, FileName(s.now()))

	start := time.Now()
	n, err := s.write(dir, file, r)
	s.Metrics.RecordWrite(err == nil, time.Since(start), n)
	return file, err
}

func (s *Store) write(dir, file string, r *model.Report) (int, error) {
	if _, err := fsutil.EnsureDir(dir, DirPerm); err != nil {
		return 0, err
	}
	var n int
	err := fsutil.ReplaceFile(file, FilePerm, func(w io.Writer) error {
		data, err := Marshal(r)
		if err != nil {
			return err
		}
		n, err = w.Write(data)
		return err
	})
	return n, err
}

// Destroy removes every report stored for host together with its directory.
// A missing directory is not an error. Subdirectories and special files are
// not removed, so the final directory removal fails with the native error
// (ENOTEMPTY) when any are present.
func (s *Store) Destroy(host string) (err error) {
	dir, err := pathutil.HostDir(s.Root, host)
	if err != nil {
		return err
	}
	defer func() { s.Metrics.RecordDestroy(err == nil) }()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read report dir: %w", err)
	}

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		info, statErr := os.Stat(path)
		if statErr != nil || !info.Mode().IsRegular() {
			continue
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove report: %w", err)
		}
	}

	if err := os.Remove(dir); err != nil {
		return fmt.Errorf("remove report dir: %w", err)
	}
	return nil
}

// FileInfo describes one stored report file.
type FileInfo struct {
	Host    string    `json:"host"`
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Hosts returns the names of all host directories under Root, sorted.
// Entries that could not have been written by Process are skipped.
func (s *Store) Hosts() ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read report root: %w", err)
	}
	var hosts []string
	for _, e := range entries {
		if !e.IsDir() || pathutil.ValidateHost(e.Name()) != nil {
			continue
		}
		hosts = append(hosts, e.Name())
	}
	sort.Strings(hosts)
	return hosts, nil
}

// List returns the report files stored for host, oldest first.
func (s *Store) List(host string) ([]FileInfo, error) {
	dir, err := pathutil.HostDir(s.Root, host)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read report dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !IsReportName(name) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Host:    host,
			Name:    name,
			Path:    filepath.Join(dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Latest returns the newest report file for host, or an error wrapping
// os.ErrNotExist when there is none.
func (s *Store) Latest(host string) (FileInfo, error) {
	files, err := s.List(host)
	if err != nil {
		return FileInfo{}, err
	}
	if len(files) == 0 {
		return FileInfo{}, fmt.Errorf("no reports for %s: %w", host, os.ErrNotExist)
	}
	return files[len(files)-1], nil
}

// Read returns the content of the named report of host. An empty name reads
// the latest report.
func (s *Store) Read(host, name string) ([]byte, error) {
	if name == "" {
		latest, err := s.Latest(host)
		if err != nil {
			return nil, err
		}
		name = latest.Name
	}
	dir, err := pathutil.HostDir(s.Root, host)
	if err != nil {
		return nil, err
	}
	if !IsReportName(name) {
		return nil, errclass.ErrInvalidIdentifier.WithMessagef("invalid report name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return data, nil
}

// IsReportName reports whether name has the <YYYYMMDDHHmm>.json form.
func IsReportName(name string) bool {
	stem, ok := strings.CutSuffix(name, fileExt)
	if !ok || len(stem) != len(fileNameLayout) {
		return false
	}
	_, err := time.Parse(fileNameLayout, stem)
	return err == nil
}

// IsDirectoryNotEmpty reports whether err came from removing a host
// directory that still held entries Destroy does not delete.
func IsDirectoryNotEmpty(err error) bool {
	var pe *os.PathError
	if !errors.As(err, &pe) {
		return false
	}
	return isNotEmpty(pe.Err)
}
