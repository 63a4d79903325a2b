package template

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Manager loads, saves, and deletes templates. Built-ins are read-only;
// user templates are YAML files named <id>.yaml in dir.
type Manager struct {
	dir string
}

func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "template: create dir %s", dir)
	}
	return &Manager{dir: dir}, nil
}

// List returns built-in templates followed by user templates, optionally
// filtered by category. Unreadable user files are skipped.
func (m *Manager) List(category string) []Template {
	templates := BuiltinTemplates()

	entries, err := os.ReadDir(m.dir)
	if err == nil {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			t, err := m.loadFile(filepath.Join(m.dir, name))
			if err != nil {
				zap.L().Warn("skipping unreadable template", zap.String("file", name), zap.Error(err))
				continue
			}
			templates = append(templates, t)
		}
	}

	if category == "" {
		return templates
	}
	var filtered []Template
	for _, t := range templates {
		if t.Category == category {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// Get finds a template by ID, built-ins first.
func (m *Manager) Get(id string) (Template, error) {
	for _, t := range BuiltinTemplates() {
		if t.ID == id {
			return t, nil
		}
	}
	t, err := m.loadFile(m.userPath(id))
	if err != nil {
		return Template{}, eris.Wrapf(err, "template: %q not found", id)
	}
	return t, nil
}

// Save writes a user template. Built-in IDs are protected.
func (m *Manager) Save(t Template) (string, error) {
	if t.Builtin || m.isBuiltinID(t.ID) {
		return "", eris.Errorf("template: %q is built-in and cannot be saved", t.ID)
	}
	if err := t.Validate(); err != nil {
		return "", eris.Wrap(err, "template: invalid template")
	}

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	data, err := yaml.Marshal(t)
	if err != nil {
		return "", eris.Wrap(err, "template: marshal")
	}
	path := m.userPath(t.ID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrapf(err, "template: write %s", path)
	}
	return path, nil
}

// Delete removes a user template. Built-in IDs are protected.
func (m *Manager) Delete(id string) error {
	if m.isBuiltinID(id) {
		return eris.Errorf("template: %q is built-in and cannot be deleted", id)
	}
	path := m.userPath(id)
	if _, err := os.Stat(path); err != nil {
		return eris.Errorf("template: %q not found", id)
	}
	if err := os.Remove(path); err != nil {
		return eris.Wrapf(err, "template: delete %s", path)
	}
	return nil
}

// ImportAttributes splits free text into an attribute list: one item per
// line or per separator occurrence, blanks dropped.
func ImportAttributes(text, separator string) []string {
	if separator == "" {
		separator = ","
	}
	var items []string
	for _, line := range strings.Split(text, "\n") {
		for _, item := range strings.Split(line, separator) {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
	}
	return items
}

func (m *Manager) loadFile(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, err
	}
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Template{}, err
	}
	if err := t.Validate(); err != nil {
		return Template{}, err
	}
	return t, nil
}

func (m *Manager) userPath(id string) string {
	return filepath.Join(m.dir, id+".yaml")
}

func (m *Manager) isBuiltinID(id string) bool {
	for _, t := range BuiltinTemplates() {
		if t.ID == id {
			return true
		}
	}
	return false
}
