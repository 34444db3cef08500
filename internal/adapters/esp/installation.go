package esp

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/plugin"
)

// Installation reads plugins, string tables and the active load order from a game install
type Installation struct {
	PluginsDir      string
	LoadOrderPath   string
	StringsDir      string
	Language        string
	ImplicitPlugins []string

	reader *Reader
}

// NewInstallation creates an Installation. An empty stringsDir means <pluginsDir>/Strings.
func NewInstallation(pluginsDir, loadOrderPath, stringsDir, language string, implicit []string) *Installation {
	if stringsDir == "" {
		stringsDir = filepath.Join(pluginsDir, "Strings")
	}
	return &Installation{
		PluginsDir:      pluginsDir,
		LoadOrderPath:   loadOrderPath,
		StringsDir:      stringsDir,
		Language:        language,
		ImplicitPlugins: implicit,
		reader:          NewReader(),
	}
}

// LoadOrder returns the implicit plugins present on disk followed by plugins.txt.
// Without a plugins.txt only the implicit plugins are loaded.
func (in *Installation) LoadOrder(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var listed []string
	if in.LoadOrderPath != "" {
		names, err := ReadPluginsFile(in.LoadOrderPath)
		if err != nil {
			return nil, err
		}
		listed = names
	}
	return WithImplicitPlugins(listed, in.PluginsDir, in.ImplicitPlugins), nil
}

// ReadPlugin reads the INGR and MGEF records of the named plugin
func (in *Installation) ReadPlugin(ctx context.Context, name string) (*plugin.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := ResolvePluginPath(in.PluginsDir, name)
	if err != nil {
		return nil, err
	}
	src, err := in.reader.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// Keep the load order spelling so globalization finds it
	src.Name = name
	return src, nil
}

// StringTables loads the localized strings of the named plugin
func (in *Installation) StringTables(name string) (plugin.StringLookup, error) {
	tables, err := LoadStringTables(in.StringsDir, name, in.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to load string tables for %s: %w", name, err)
	}
	return tables, nil
}
