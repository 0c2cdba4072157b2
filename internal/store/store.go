// Package store persists snapshots as files on disk.
//
// Two layouts are supported. The domain layout keeps one subdirectory per
// domain name under the root; the flat layout writes every file directly
// into the root. File names come from a pattern whose placeholders are
// {name}, {major}, {minor} and {patch}.
//
// The store does no locking. Callers must not save the same domain and
// version concurrently.
package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pders01/domainsnap/internal/codec"
	"github.com/pders01/domainsnap/internal/models"
)

// DefaultFilenamePattern is used when Options.FilenamePattern is empty.
const DefaultFilenamePattern = "v{major}.{minor}.{patch}.json"

// Layout selects how snapshot files are arranged under the root.
type Layout string

const (
	LayoutDomain Layout = "domain"
	LayoutFlat   Layout = "flat"
)

// ErrNotFound is wrapped by every NotFoundError.
var ErrNotFound = errors.New("snapshot not found")

// NotFoundError reports a missing snapshot file.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("snapshot not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Options configures a Store.
type Options struct {
	Layout          Layout
	FilenamePattern string
	// Logger receives a line per file operation. Nil disables logging.
	Logger *log.Logger
	// Now stamps snapshots created by SaveManifest. Defaults to time.Now.
	Now func() time.Time
}

// Store reads and writes snapshot files under a root directory.
type Store struct {
	root    string
	layout  Layout
	pattern string
	matcher *regexp.Regexp
	shared  bool
	logger  *log.Logger
	now     func() time.Time
}

// Entry is one stored snapshot version.
type Entry struct {
	Name    string
	Version models.Version
	Path    string
}

var placeholders = map[string]string{
	"{name}":  `(?P<name>.+?)`,
	"{major}": `(?P<major>\d+)`,
	"{minor}": `(?P<minor>\d+)`,
	"{patch}": `(?P<patch>\d+)`,
}

// New returns a store rooted at root. The directory is created lazily on
// the first save.
func New(root string, opts Options) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("store root is empty: %w", models.ErrInvalidArgument)
	}
	layout := opts.Layout
	if layout == "" {
		layout = LayoutDomain
	}
	if layout != LayoutDomain && layout != LayoutFlat {
		return nil, fmt.Errorf("unknown store layout %q: %w", layout, models.ErrInvalidArgument)
	}
	pattern := opts.FilenamePattern
	if pattern == "" {
		pattern = DefaultFilenamePattern
	}
	matcher, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		root:    root,
		layout:  layout,
		pattern: pattern,
		matcher: matcher,
		shared:  layout == LayoutFlat && !strings.Contains(pattern, "{name}"),
		logger:  opts.Logger,
		now:     now,
	}, nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if strings.ContainsAny(pattern, `/\`) {
		return nil, fmt.Errorf("filename pattern %q must not contain path separators: %w", pattern, models.ErrInvalidArgument)
	}
	for _, p := range []string{"{major}", "{minor}", "{patch}"} {
		if strings.Count(pattern, p) != 1 {
			return nil, fmt.Errorf("filename pattern %q must contain %s exactly once: %w", pattern, p, models.ErrInvalidArgument)
		}
	}
	if strings.Count(pattern, "{name}") > 1 {
		return nil, fmt.Errorf("filename pattern %q must contain {name} at most once: %w", pattern, models.ErrInvalidArgument)
	}
	// Adjacent placeholders cannot be split apart again: v{major}{minor}
	// renders 1.10 and 11.0 alike.
	for a := range placeholders {
		for b := range placeholders {
			if strings.Contains(pattern, a+b) {
				return nil, fmt.Errorf("filename pattern %q needs a separator between %s and %s: %w", pattern, a, b, models.ErrInvalidArgument)
			}
		}
	}

	var expr strings.Builder
	expr.WriteString("^")
	rest := pattern
	for rest != "" {
		i := strings.IndexByte(rest, '{')
		if i < 0 {
			expr.WriteString(regexp.QuoteMeta(rest))
			break
		}
		expr.WriteString(regexp.QuoteMeta(rest[:i]))
		rest = rest[i:]
		matched := false
		for ph, re := range placeholders {
			if strings.HasPrefix(rest, ph) {
				expr.WriteString(re)
				rest = rest[len(ph):]
				matched = true
				break
			}
		}
		if !matched {
			expr.WriteString(regexp.QuoteMeta("{"))
			rest = rest[1:]
		}
	}
	expr.WriteString("$")
	return regexp.Compile(expr.String())
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Layout returns the store's file layout.
func (s *Store) Layout() Layout {
	return s.layout
}

func (s *Store) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid domain name %q: %w", name, models.ErrInvalidArgument)
	}
	return nil
}

func (s *Store) dir(name string) string {
	if s.layout == LayoutFlat {
		return s.root
	}
	return filepath.Join(s.root, name)
}

func (s *Store) filename(name string, v models.Version) string {
	r := strings.NewReplacer(
		"{name}", name,
		"{major}", strconv.Itoa(v.Major),
		"{minor}", strconv.Itoa(v.Minor),
		"{patch}", strconv.Itoa(v.Patch),
	)
	return r.Replace(s.pattern)
}

// Path returns where the snapshot of name at version v is stored.
func (s *Store) Path(name string, v models.Version) string {
	return filepath.Join(s.dir(name), s.filename(name, v))
}

// SaveManifest captures m as a new snapshot and saves it.
func (s *Store) SaveManifest(m *models.Manifest) (*models.Snapshot, string, error) {
	snap, err := codec.NewSnapshot(m, s.now())
	if err != nil {
		return nil, "", err
	}
	path, err := s.Save(snap)
	if err != nil {
		return nil, "", err
	}
	return snap, path, nil
}

// Save writes snap atomically and returns its path. An existing file for
// the same domain and version is replaced. In a flat store whose pattern
// has no {name}, a file already holding another domain is never replaced.
func (s *Store) Save(snap *models.Snapshot) (string, error) {
	if snap == nil {
		return "", fmt.Errorf("snapshot is nil: %w", models.ErrInvalidArgument)
	}
	if err := checkName(snap.Name); err != nil {
		return "", err
	}
	data, err := codec.Marshal(snap)
	if err != nil {
		return "", err
	}

	path := s.Path(snap.Name, snap.Version)
	if s.shared {
		existing, err := s.Load(path)
		switch {
		case err == nil && existing.Name != snap.Name:
			return "", fmt.Errorf("%s already holds domain %s; add {name} to the filename pattern: %w",
				path, existing.Name, models.ErrInvalidArgument)
		case err != nil && !errors.Is(err, ErrNotFound):
			return "", err
		}
	}
	if err := writeFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("failed to save snapshot %s %s: %w", snap.Name, snap.Version, err)
	}
	s.logf("saved %s %s to %s", snap.Name, snap.Version, path)
	return path, nil
}

// writeFileAtomic writes into a temporary sibling and renames it over path
// so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads and decodes the snapshot file at path.
func (s *Store) Load(path string) (*models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	snap, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.logf("loaded %s %s from %s", snap.Name, snap.Version, path)
	return snap, nil
}

// LoadVersion loads the snapshot of name at version v.
func (s *Store) LoadVersion(name string, v models.Version) (*models.Snapshot, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	path := s.Path(name, v)
	snap, err := s.Load(path)
	if err != nil {
		return nil, err
	}
	if s.shared && snap.Name != name {
		return nil, &NotFoundError{Path: path}
	}
	return snap, nil
}

// ListVersions returns the stored versions of name, oldest first. A domain
// with no snapshots yields an empty list.
func (s *Store) ListVersions(name string) ([]Entry, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	entries, err := s.scan(s.dir(name))
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out, nil
}

// GetLatest loads the highest stored version of name.
func (s *Store) GetLatest(name string) (*models.Snapshot, string, error) {
	entries, err := s.ListVersions(name)
	if err != nil {
		return nil, "", err
	}
	if len(entries) == 0 {
		return nil, "", &NotFoundError{Path: s.dir(name)}
	}
	latest := entries[len(entries)-1]
	snap, err := s.Load(latest.Path)
	if err != nil {
		return nil, "", err
	}
	return snap, latest.Path, nil
}

// Delete removes the snapshot of name at version v. It reports false when
// there was nothing to delete.
func (s *Store) Delete(name string, v models.Version) (bool, error) {
	if err := checkName(name); err != nil {
		return false, err
	}
	path := s.Path(name, v)
	if s.shared {
		snap, err := s.Load(path)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if snap.Name != name {
			return false, nil
		}
	}
	return s.Remove(Entry{Name: name, Version: v, Path: path})
}

// Remove deletes the file behind e, as returned by ListVersions, whatever
// its name on disk. It reports false if the file was already gone.
func (s *Store) Remove(e Entry) (bool, error) {
	if err := os.Remove(e.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete snapshot: %w", err)
	}
	s.logf("deleted %s %s (%s)", e.Name, e.Version, e.Path)
	if s.layout == LayoutDomain {
		// Drop the domain directory once it is empty; ignore failures.
		_ = os.Remove(filepath.Dir(e.Path))
	}
	return true, nil
}

// Domains returns the names of all domains with at least one snapshot.
func (s *Store) Domains() ([]string, error) {
	seen := make(map[string]bool)
	if s.layout == LayoutFlat {
		entries, err := s.scan(s.root)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			seen[e.Name] = true
		}
	} else {
		dirs, err := os.ReadDir(s.root)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return []string{}, nil
			}
			return nil, fmt.Errorf("failed to read store: %w", err)
		}
		for _, d := range dirs {
			if !d.IsDir() {
				continue
			}
			entries, err := s.ListVersions(d.Name())
			if err != nil {
				return nil, err
			}
			if len(entries) > 0 {
				seen[d.Name()] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// scan lists the snapshot files in dir that match the filename pattern,
// sorted by name then version. When the pattern has no {name} the domain
// is resolved from the directory (domain layout) or the file itself.
func (s *Store) scan(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var out []Entry
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		m := s.matcher.FindStringSubmatch(f.Name())
		if m == nil {
			continue
		}
		path := filepath.Join(dir, f.Name())
		e := Entry{Path: path}
		for i, group := range s.matcher.SubexpNames() {
			switch group {
			case "name":
				e.Name = m[i]
			case "major":
				e.Version.Major, _ = strconv.Atoi(m[i])
			case "minor":
				e.Version.Minor, _ = strconv.Atoi(m[i])
			case "patch":
				e.Version.Patch, _ = strconv.Atoi(m[i])
			}
		}
		if e.Name == "" {
			if s.layout == LayoutDomain {
				e.Name = filepath.Base(dir)
			} else {
				snap, err := s.Load(path)
				if err != nil {
					s.logf("skipping %s: %v", path, err)
					continue
				}
				e.Name = snap.Name
			}
		}
		out = append(out, e)
	}

	slices.SortFunc(out, func(a, b Entry) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return a.Version.Compare(b.Version)
	})
	return out, nil
}

// PruneCandidates returns the versions of name that fall outside the keep
// newest ones, oldest first.
func (s *Store) PruneCandidates(name string, keep int) ([]Entry, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must not be negative: %w", models.ErrInvalidArgument)
	}
	entries, err := s.ListVersions(name)
	if err != nil {
		return nil, err
	}
	if len(entries) <= keep {
		return nil, nil
	}
	return entries[:len(entries)-keep], nil
}
