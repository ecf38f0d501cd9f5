package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Lockfile models the program.lock contents.
type Lockfile struct {
	Path      string
	Root      string
	Generated string
	Tool      string
	Packages  []*LockedPackage
}

// LockedPackage captures a single resolved dependency entry.
type LockedPackage struct {
	Name     string
	Version  string
	Source   string
	Checksum string
}

// NewLockfile constructs a lockfile with metadata seeded for the provided root.
func NewLockfile(root, tool string) *Lockfile {
	return &Lockfile{
		Root:      sanitizeSegment(root),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
		Packages:  []*LockedPackage{},
	}
}

// LoadLockfile parses program.lock from disk.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw lockfileDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}

	lock := raw.toLockfile()
	lock.Path = abs
	lock.normalize()
	return lock, nil
}

// WriteLockfile serialises the lockfile back to disk, refreshing metadata.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		if lock.Path == "" {
			return fmt.Errorf("lockfile: missing path")
		}
		path = lock.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}

	if lock.Generated == "" {
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.Path = abs
	lock.normalize()

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(lock.toDisk()); err != nil {
		return fmt.Errorf("lockfile: encode: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("lockfile: encode: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

// normalize keeps the package list sorted and names sanitized so the on-disk
// form is deterministic.
func (l *Lockfile) normalize() {
	l.Root = sanitizeSegment(l.Root)
	packages := make([]*LockedPackage, 0, len(l.Packages))
	for _, pkg := range l.Packages {
		if pkg == nil {
			continue
		}
		pkg.Name = sanitizeSegment(pkg.Name)
		packages = append(packages, pkg)
	}
	sort.Slice(packages, func(i, j int) bool {
		if packages[i].Name != packages[j].Name {
			return packages[i].Name < packages[j].Name
		}
		return packages[i].Version < packages[j].Version
	})
	l.Packages = packages
}

type lockfileDisk struct {
	Root      string            `yaml:"root"`
	Generated string            `yaml:"generated"`
	Tool      string            `yaml:"tool"`
	Packages  []lockPackageDisk `yaml:"packages"`
}

type lockPackageDisk struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Source   string `yaml:"source"`
	Checksum string `yaml:"checksum,omitempty"`
}

func (d lockfileDisk) toLockfile() *Lockfile {
	packages := make([]*LockedPackage, 0, len(d.Packages))
	for _, pkg := range d.Packages {
		packages = append(packages, &LockedPackage{
			Name:     pkg.Name,
			Version:  pkg.Version,
			Source:   pkg.Source,
			Checksum: pkg.Checksum,
		})
	}
	return &Lockfile{
		Root:      d.Root,
		Generated: d.Generated,
		Tool:      d.Tool,
		Packages:  packages,
	}
}

func (l *Lockfile) toDisk() lockfileDisk {
	packages := make([]lockPackageDisk, 0, len(l.Packages))
	for _, pkg := range l.Packages {
		packages = append(packages, lockPackageDisk{
			Name:     pkg.Name,
			Version:  pkg.Version,
			Source:   pkg.Source,
			Checksum: pkg.Checksum,
		})
	}
	return lockfileDisk{
		Root:      l.Root,
		Generated: l.Generated,
		Tool:      l.Tool,
		Packages:  packages,
	}
}
