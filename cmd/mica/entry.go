package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mica/interpreter-go/pkg/driver"
	"mica/interpreter-go/pkg/interpreter"
	"mica/interpreter-go/pkg/runtime"
)

func runEntry(args []string) int {
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}

	manifest, manifestErr := loadManifestFrom(".")
	if manifestErr != nil {
		switch {
		case errors.Is(manifestErr, errManifestNotFound):
			manifest = nil
		case len(args) == 1 && looksLikePathCandidate(args[0]):
			fmt.Fprintf(os.Stderr, "warning: unable to load manifest (%v); falling back to direct file execution\n", manifestErr)
			manifest = nil
		default:
			fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", manifestErr)
			return 1
		}
	}

	if len(args) == 0 {
		if manifest == nil {
			fmt.Fprintln(os.Stderr, "mica run requires a manifest target or program file (program.yml not found)")
			return 1
		}
		target, err := manifest.DefaultTarget()
		if err != nil {
			fmt.Fprintf(os.Stderr, "manifest error: %v\n", err)
			return 1
		}
		return executeTarget(manifest, target)
	}

	candidate := args[0]
	if manifest != nil {
		if target, ok := manifest.FindTarget(candidate); ok && target != nil {
			return executeTarget(manifest, target)
		}
	}

	// Treat the argument as a direct program file path.
	return executeEntry(candidate, manifest)
}

func executeTarget(manifest *driver.Manifest, target *driver.TargetSpec) int {
	entry := filepath.Join(filepath.Dir(manifest.Path), filepath.FromSlash(target.Main))
	return executeEntry(entry, manifest)
}

func executeEntry(entry string, manifest *driver.Manifest) int {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		fmt.Fprintln(os.Stderr, "mica run requires a program file")
		return 1
	}

	entryAbs, err := filepath.Abs(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve entry path: %v\n", err)
		return 1
	}

	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	searchPaths, err := collectSearchPaths(filepath.Dir(entryAbs), manifest, lock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare execution environment: %v\n", err)
		return 1
	}

	loader := driver.NewLoader(searchPaths)
	program, err := loader.Load(entryAbs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load program: %v\n", err)
		return 1
	}

	output, err := interpreter.New().EvaluateProgram(program)
	if err != nil {
		var evalErr *interpreter.EvalError
		if errors.As(err, &evalErr) {
			fmt.Fprintf(os.Stderr, "runtime error: %v\n", evalErr)
			return 1
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	for _, value := range output {
		fmt.Fprintln(os.Stdout, formatValue(value))
	}
	return 0
}

// formatValue renders a runtime value for program output.
func formatValue(value runtime.Value) string {
	switch v := value.(type) {
	case runtime.NumberValue:
		return strconv.FormatFloat(v.Val, 'g', -1, 64)
	case runtime.BoolValue:
		if v.Val {
			return "true"
		}
		return "false"
	case *runtime.ArrayValue:
		parts := make([]string, len(v.Elements))
		for i, element := range v.Elements {
			parts[i] = formatValue(element)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *runtime.FunctionValue:
		return fmt.Sprintf("%s/%d", v.Name, len(v.Params))
	case runtime.NativeFunctionValue:
		return fmt.Sprintf("%s/%d", v.Name, v.Arity)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func loadManifestFrom(start string) (*driver.Manifest, error) {
	path, err := findManifest(start)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(path)
}

func findManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, "program.yml")
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no program.yml found from %s upwards: %w", origin, errManifestNotFound)
		}
		dir = parent
	}
}

func resolveMicaHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("MICA_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve MICA_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".mica"), nil
}

func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	lockPath := filepath.Join(filepath.Dir(manifest.Path), "program.lock")
	lock, err := driver.LoadLockfile(lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if len(manifest.Dependencies) > 0 {
				return nil, fmt.Errorf("program.lock missing for %q; run `mica deps install`", manifest.Name)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}
	return lock, nil
}

// collectSearchPaths orders program resolution roots: the entry directory,
// the manifest directory, the working directory, MICA_PATH entries, then
// cached dependency sources from the lockfile.
func collectSearchPaths(base string, manifest *driver.Manifest, lock *driver.Lockfile) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string

	add := func(path string) {
		if path == "" {
			return
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		paths = append(paths, abs)
	}

	add(base)
	if manifest != nil && manifest.Path != "" {
		add(filepath.Dir(manifest.Path))
	}
	if cwd, err := os.Getwd(); err == nil {
		add(cwd)
	}
	for _, part := range splitPathListEnv(os.Getenv("MICA_PATH")) {
		add(part)
	}

	if lock != nil && len(lock.Packages) > 0 {
		cacheDir, err := resolveMicaHome()
		if err != nil {
			return nil, err
		}
		for _, pkg := range lock.Packages {
			if pkg == nil {
				continue
			}
			add(filepath.Join(cacheDir, "pkg", "src", pkg.Name, sanitizePathSegment(pkg.Version)))
		}
	}

	return paths, nil
}

func splitPathListEnv(value string) []string {
	if value == "" {
		return nil
	}
	raw := strings.Split(value, string(os.PathListSeparator))
	out := make([]string, 0, len(raw))
	for _, part := range raw {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func looksLikePathCandidate(arg string) bool {
	if arg == "" {
		return false
	}
	if strings.Contains(arg, string(os.PathSeparator)) {
		return true
	}
	// Support forward/backward slashes regardless of host OS.
	if strings.Contains(arg, "/") || strings.Contains(arg, "\\") {
		return true
	}
	if filepath.Ext(arg) == ".json" {
		return true
	}
	if strings.HasPrefix(arg, ".") {
		return true
	}
	return false
}
