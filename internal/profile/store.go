package profile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrInvalidName is returned for names that are not plain file names.
	ErrInvalidName = errors.New("invalid profile name")
	// ErrIO wraps failures writing profile files.
	ErrIO = errors.New("profile i/o failure")
)

// DirName is the profiles subdirectory of the data directory.
const DirName = "profiles"

// Store reads and writes profile documents in a directory.
type Store struct {
	dir string
}

// NewStore returns a store for baseDir/profiles.
func NewStore(baseDir string) *Store {
	return &Store{dir: filepath.Join(baseDir, DirName)}
}

// Dir returns the profiles directory.
func (s *Store) Dir() string {
	return s.dir
}

// EnsureStorage creates the profiles directory if needed.
func (s *Store) EnsureStorage() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrIO, s.dir, err)
	}
	return nil
}

// Path returns the file path for a profile name.
func (s *Store) Path(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// Exists reports whether a profile file is present.
func (s *Store) Exists(name string) bool {
	path, err := s.Path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads a profile. A missing file yields New() together with
// ErrProfileNotFound; a corrupt one yields ErrProfileInvalid and no profile.
func (s *Store) Load(name string) (*Profile, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Warn("profile file not found, using an empty profile", "file", name)
		return New(), fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrProfileInvalid, name, err)
	}

	p, err := Parse(data)
	if err != nil {
		slog.Error("invalid profile", "file", name, "err", err)
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

// Save writes a profile, replacing any existing file.
func (s *Store) Save(name string, p *Profile) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := s.EnsureStorage(); err != nil {
		return err
	}
	if err := writeProfile(path, p); err != nil {
		return err
	}
	slog.Info("saved profile", "file", name)
	return nil
}

// List returns the names of the *.json files in the profiles directory.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Import validates the document at srcPath and copies it into the profiles
// directory under its base name, which is returned.
func (s *Store) Import(srcPath string) (string, error) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("import %s: %w", srcPath, err)
	}
	if _, err := Parse(data); err != nil {
		return "", fmt.Errorf("import %s: %w", srcPath, err)
	}

	name := filepath.Base(srcPath)
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}
	if err := s.EnsureStorage(); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	slog.Info("imported profile", "file", name, "from", srcPath)
	return name, nil
}

// Export writes a profile to an arbitrary path.
func (s *Store) Export(p *Profile, dstPath string) error {
	if err := writeProfile(dstPath, p); err != nil {
		return err
	}
	slog.Info("exported profile", "path", dstPath)
	return nil
}

func writeProfile(path string, p *Profile) error {
	data, err := p.Marshal()
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrIO, path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	return nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
