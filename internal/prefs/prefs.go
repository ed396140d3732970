// Package prefs persists dashboard preferences in ~/.config/bodega/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/bodega/internal/config"
)

// Prefs holds what the dashboard remembers between runs.
type Prefs struct {
	Theme string `toml:"theme"`
	Tab   string `toml:"tab"`
}

const (
	defaultPrefsPath = "~/.config/bodega/prefs.toml"
	defaultTheme     = "Nightfox"
	defaultTab       = "clientes"
)

var knownTabs = map[string]bool{"clientes": true, "productos": true, "usuarios": true}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Defaults returns the preferences used when nothing is stored.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme, Tab: defaultTab}
}

// Load reads preferences from path. A missing or unreadable file yields
// defaults; preferences are never worth failing startup over.
func Load(path string) Prefs {
	resolved, err := resolvePath(path)
	if err != nil {
		return Defaults()
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return Defaults()
	}

	var p Prefs
	if err := toml.Unmarshal(data, &p); err != nil {
		return Defaults()
	}
	return p.normalized()
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	data, err := toml.Marshal(p.normalized())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func (p Prefs) normalized() Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	p.Tab = strings.ToLower(strings.TrimSpace(p.Tab))
	if !knownTabs[p.Tab] {
		p.Tab = defaultTab
	}
	return p
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	return config.ExpandPath(path)
}
