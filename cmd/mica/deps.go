package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mica/interpreter-go/pkg/driver"
)

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "mica deps requires a subcommand (install, update)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "mica deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall()
	case "update":
		return runDepsUpdate(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

func runDepsInstall() int {
	manifest, cacheDir, code := prepareDepsContext()
	if code != 0 {
		return code
	}

	fmt.Fprintf(os.Stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(os.Stdout, "Root program: %s\n", manifest.Name)
	fmt.Fprintf(os.Stdout, "Dependencies: %d\n", len(manifest.Dependencies))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", cacheDir)

	lock, lockCreated, code := openLockfile(manifest)
	if code != 0 {
		return code
	}

	installer := newDependencyInstaller(manifest, cacheDir)
	changed, logs, err := installer.Install(lock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}

	if changed || lockCreated {
		action := "Updated"
		if lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(lock, lock.Path); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "%s program.lock: %s\n", action, lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "program.lock already up to date: %s\n", lock.Path)
	}

	fmt.Fprintln(os.Stdout, "Dependencies installed.")
	return 0
}

func runDepsUpdate(targets []string) int {
	manifest, cacheDir, code := prepareDepsContext()
	if code != 0 {
		return code
	}

	updateSet := make(map[string]struct{})
	if len(targets) > 0 {
		declared := make(map[string]struct{}, len(manifest.Dependencies))
		for name := range manifest.Dependencies {
			declared[sanitizeName(name)] = struct{}{}
		}
		for _, target := range targets {
			sanitized := sanitizeName(target)
			if _, ok := declared[sanitized]; !ok {
				fmt.Fprintf(os.Stderr, "dependency %q not declared in manifest\n", target)
				return 1
			}
			updateSet[sanitized] = struct{}{}
		}
	}

	lock, lockCreated, code := openLockfile(manifest)
	if code != 0 {
		return code
	}

	if len(updateSet) == 0 {
		lock.Packages = nil
	} else {
		filtered := make([]*driver.LockedPackage, 0, len(lock.Packages))
		for _, pkg := range lock.Packages {
			if pkg == nil {
				continue
			}
			if _, ok := updateSet[sanitizeName(pkg.Name)]; ok {
				continue
			}
			filtered = append(filtered, pkg)
		}
		lock.Packages = filtered
	}

	installer := newDependencyInstaller(manifest, cacheDir)
	changed, logs, err := installer.Install(lock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to update dependencies: %v\n", err)
		return 1
	}
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}

	if changed || lockCreated {
		if err := driver.WriteLockfile(lock, lock.Path); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "Updated program.lock: %s\n", lock.Path)
	} else {
		fmt.Fprintln(os.Stdout, "Dependencies already up to date.")
	}
	return 0
}

func prepareDepsContext() (*driver.Manifest, string, int) {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to determine working directory: %v\n", err)
		return nil, "", 1
	}
	manifestPath, err := findManifest(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to locate program.yml: %v\n", err)
		return nil, "", 1
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read manifest: %v\n", err)
		return nil, "", 1
	}
	cacheDir, err := resolveMicaHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve MICA_HOME: %v\n", err)
		return nil, "", 1
	}
	return manifest, cacheDir, 0
}

func openLockfile(manifest *driver.Manifest) (*driver.Lockfile, bool, int) {
	lockPath := filepath.Join(filepath.Dir(manifest.Path), "program.lock")
	lock, err := driver.LoadLockfile(lockPath)
	lockCreated := false
	switch {
	case err == nil:
		if lock.Root != manifest.Name {
			fmt.Fprintf(os.Stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return nil, false, 1
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		lockCreated = true
	default:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return nil, false, 1
	}
	lock.Path = lockPath
	lock.Tool = cliToolVersion
	return lock, lockCreated, 0
}

type dependencyInstaller struct {
	manifest     *driver.Manifest
	manifestRoot string
	cacheDir     string
	logs         []string
	git          *gitFetcher
	path         *pathFetcher
}

func newDependencyInstaller(manifest *driver.Manifest, cacheDir string) *dependencyInstaller {
	var root string
	if manifest != nil {
		root = filepath.Dir(manifest.Path)
	}
	return &dependencyInstaller{
		manifest:     manifest,
		manifestRoot: root,
		cacheDir:     cacheDir,
		logs:         []string{},
		git:          newGitFetcher(cacheDir),
		path:         newPathFetcher(cacheDir, root),
	}
}

// Install fetches every declared dependency into the cache and reconciles the
// lockfile against the result. Returns whether the lock contents changed.
func (d *dependencyInstaller) Install(lock *driver.Lockfile) (bool, []string, error) {
	if d.manifest == nil {
		return false, d.logs, nil
	}

	names := make([]string, 0, len(d.manifest.Dependencies))
	for name := range d.manifest.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	desired := make([]*driver.LockedPackage, 0, len(names))
	for _, name := range names {
		spec := d.manifest.Dependencies[name]
		if spec == nil {
			return false, d.logs, fmt.Errorf("dependency %q has no descriptor", name)
		}
		pkg, err := d.fetch(name, spec)
		if err != nil {
			return false, d.logs, err
		}
		d.logs = append(d.logs, fmt.Sprintf("Resolved %s %s (%s)", pkg.Name, pkg.Version, pkg.Source))
		desired = append(desired, pkg)
	}

	sort.SliceStable(desired, func(i, j int) bool {
		if desired[i].Name == desired[j].Name {
			return desired[i].Version < desired[j].Version
		}
		return desired[i].Name < desired[j].Name
	})

	existing := make(map[string]*driver.LockedPackage, len(lock.Packages))
	for _, pkg := range lock.Packages {
		if pkg == nil {
			continue
		}
		existing[pkg.Name] = pkg
	}

	changed := len(desired) != len(existing)
	for _, pkg := range desired {
		current, ok := existing[pkg.Name]
		if !ok || !lockedPackageEqual(current, pkg) {
			changed = true
		}
	}

	lock.Packages = desired
	return changed, d.logs, nil
}

func (d *dependencyInstaller) fetch(name string, spec *driver.DependencySpec) (*driver.LockedPackage, error) {
	switch {
	case spec.Git != "":
		return d.git.Fetch(name, spec)
	case spec.Path != "":
		return d.path.Fetch(name, spec)
	default:
		return nil, fmt.Errorf("dependency %q must specify git or path", name)
	}
}

func lockedPackageEqual(a, b *driver.LockedPackage) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name == b.Name && a.Version == b.Version && a.Source == b.Source && a.Checksum == b.Checksum
}

func sanitizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
