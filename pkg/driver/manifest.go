package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest represents the parsed contents of program.yml.
type Manifest struct {
	Path         string
	Name         string
	Version      string
	Authors      []string
	Targets      map[string]*TargetSpec
	TargetOrder  []string
	Dependencies map[string]*DependencySpec

	targetEntries []manifestTargetEntry
}

// TargetSpec describes a runnable target: a named entry pointing at a JSON
// AST document.
type TargetSpec struct {
	Name         string
	OriginalName string
	Main         string
}

type manifestTargetEntry struct {
	sanitized string
	spec      *TargetSpec
}

// DependencySpec describes a dependency descriptor in the manifest: either a
// git source pinned by rev/tag/branch, or a local path.
type DependencySpec struct {
	Git    string
	Rev    string
	Tag    string
	Branch string
	Path   string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses program.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	for i, author := range m.Authors {
		if author == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("authors[%d] must be a non-empty string", i))
		}
	}

	targetNames := make(map[string]string, len(m.targetEntries))
	for _, entry := range m.targetEntries {
		target := entry.spec
		if target == nil {
			continue
		}
		if target.OriginalName == "" {
			errs.Issues = append(errs.Issues, "targets must not use empty keys")
			continue
		}
		if other, exists := targetNames[entry.sanitized]; exists {
			errs.Issues = append(errs.Issues, fmt.Sprintf("targets %q and %q collide after sanitization", other, target.OriginalName))
		} else {
			targetNames[entry.sanitized] = target.OriginalName
		}
		if target.Main == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q requires a main entrypoint", target.OriginalName))
		}
	}

	for depName, dep := range m.Dependencies {
		for _, issue := range dep.validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: %s", depName, issue))
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

var ErrNoDefaultTarget = errors.New("manifest: no targets defined")

// DefaultTarget returns the target named "main" when present, otherwise the
// sole target, otherwise an error.
func (m *Manifest) DefaultTarget() (*TargetSpec, error) {
	if m == nil || len(m.targetEntries) == 0 {
		return nil, ErrNoDefaultTarget
	}
	if target, ok := m.Targets["main"]; ok && target != nil {
		return target, nil
	}
	if len(m.targetEntries) == 1 {
		return m.targetEntries[0].spec, nil
	}
	return nil, fmt.Errorf("manifest: multiple targets defined, none named \"main\"")
}

// FindTarget looks up a target by sanitized or original name.
func (m *Manifest) FindTarget(name string) (*TargetSpec, bool) {
	if m == nil {
		return nil, false
	}
	key := sanitizeSegment(strings.TrimSpace(name))
	if key != "" {
		if target, ok := m.Targets[key]; ok && target != nil {
			return target, true
		}
	}
	for _, entry := range m.targetEntries {
		if entry.spec == nil {
			continue
		}
		if strings.EqualFold(entry.spec.OriginalName, strings.TrimSpace(name)) {
			return entry.spec, true
		}
	}
	return nil, false
}

func (d *DependencySpec) validate() []string {
	var errs []string
	if d == nil {
		return errs
	}
	if d.Path != "" && d.Git != "" {
		errs = append(errs, "path overrides cannot also specify a git source")
		return errs
	}
	switch {
	case d.Git != "":
		pins := 0
		for _, pin := range []string{d.Rev, d.Tag, d.Branch} {
			if pin != "" {
				pins++
			}
		}
		if pins == 0 {
			errs = append(errs, "git dependencies require rev, tag, or branch")
		}
		if pins > 1 {
			errs = append(errs, "git dependencies must pin exactly one of rev, tag, or branch")
		}
	case d.Path != "":
		if d.Rev != "" || d.Tag != "" || d.Branch != "" {
			errs = append(errs, "path dependencies cannot specify git pins")
		}
	default:
		errs = append(errs, "must specify git or path")
	}
	return errs
}

// sanitizeSegment lowercases a name and replaces anything outside
// [a-z0-9._-] with underscores, matching cache directory layout rules.
func sanitizeSegment(segment string) string {
	segment = strings.ToLower(strings.TrimSpace(segment))
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

type manifestFile struct {
	Name         string        `yaml:"name"`
	Version      string        `yaml:"version"`
	Authors      stringList    `yaml:"authors"`
	Targets      targetMap     `yaml:"targets"`
	Dependencies dependencyMap `yaml:"dependencies"`
}

type targetMap struct {
	items []targetMapEntry
}

type targetMapEntry struct {
	name string
	main string
}

func (tm *targetMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 {
		tm.items = nil
		return nil
	}
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		tm.items = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: targets must be a mapping")
	}
	items := make([]targetMapEntry, 0, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valueNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: targets must not use empty keys")
		}
		main, err := decodeTargetMain(valueNode)
		if err != nil {
			return fmt.Errorf("manifest: target %q: %w", key, err)
		}
		items = append(items, targetMapEntry{name: key, main: main})
	}
	tm.items = items
	return nil
}

// decodeTargetMain accepts either a scalar entry path or a mapping with a
// main key.
func decodeTargetMain(value *yaml.Node) (string, error) {
	switch value.Kind {
	case yaml.ScalarNode:
		return strings.TrimSpace(value.Value), nil
	case yaml.MappingNode:
		var raw struct {
			Main string `yaml:"main"`
		}
		if err := value.Decode(&raw); err != nil {
			return "", err
		}
		return strings.TrimSpace(raw.Main), nil
	case yaml.AliasNode:
		return decodeTargetMain(value.Alias)
	default:
		return "", fmt.Errorf("expected string or mapping, found %s", value.ShortTag())
	}
}

type dependencyMap map[string]*DependencySpec

func (dm *dependencyMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 {
		*dm = make(dependencyMap)
		return nil
	}
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		*dm = make(dependencyMap)
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: dependencies must be a mapping")
	}
	result := make(dependencyMap, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: dependency names must be non-empty")
		}
		var raw struct {
			Git    string `yaml:"git"`
			Rev    string `yaml:"rev"`
			Tag    string `yaml:"tag"`
			Branch string `yaml:"branch"`
			Path   string `yaml:"path"`
		}
		if err := valNode.Decode(&raw); err != nil {
			return fmt.Errorf("manifest: dependency %q: %w", key, err)
		}
		result[key] = &DependencySpec{
			Git:    strings.TrimSpace(raw.Git),
			Rev:    strings.TrimSpace(raw.Rev),
			Tag:    strings.TrimSpace(raw.Tag),
			Branch: strings.TrimSpace(raw.Branch),
			Path:   strings.TrimSpace(raw.Path),
		}
	}
	*dm = result
	return nil
}

type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			str = strings.TrimSpace(str)
			if str == "" {
				continue
			}
			items = append(items, str)
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("manifest: expected string or sequence for list but found %s", value.ShortTag())
	}
}

func (mf manifestFile) toManifest(path string) *Manifest {
	targetCapacity := len(mf.Targets.items)
	result := &Manifest{
		Path:          path,
		Name:          sanitizeSegment(mf.Name),
		Version:       strings.TrimSpace(mf.Version),
		Authors:       []string(mf.Authors),
		Targets:       make(map[string]*TargetSpec, targetCapacity),
		TargetOrder:   make([]string, 0, targetCapacity),
		Dependencies:  make(map[string]*DependencySpec, len(mf.Dependencies)),
		targetEntries: make([]manifestTargetEntry, 0, targetCapacity),
	}

	for name, dep := range mf.Dependencies {
		result.Dependencies[name] = dep
	}

	seenTargets := make(map[string]struct{}, targetCapacity)
	for _, item := range mf.Targets.items {
		original := strings.TrimSpace(item.name)
		if original == "" {
			continue
		}
		sanitized := sanitizeSegment(original)
		spec := &TargetSpec{
			Name:         sanitized,
			OriginalName: original,
			Main:         item.main,
		}
		if _, exists := result.Targets[sanitized]; !exists {
			result.Targets[sanitized] = spec
		}
		if _, exists := seenTargets[sanitized]; !exists {
			result.TargetOrder = append(result.TargetOrder, sanitized)
			seenTargets[sanitized] = struct{}{}
		}
		result.targetEntries = append(result.targetEntries, manifestTargetEntry{
			sanitized: sanitized,
			spec:      spec,
		})
	}
	return result
}
