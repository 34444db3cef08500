package esp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultImplicitPlugins are loaded by the game before anything listed in plugins.txt
var DefaultImplicitPlugins = []string{
	"Skyrim.esm",
	"Update.esm",
	"Dawnguard.esm",
	"HearthFires.esm",
	"Dragonborn.esm",
}

// ParsePluginsList reads a plugins.txt listing. Blank lines and "#" comments are
// skipped. When any line is marked active with a leading "*" only marked lines are
// returned; otherwise every listed plugin is active.
func ParsePluginsList(r io.Reader) ([]string, error) {
	var all, active []string
	marked := false
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if name, ok := strings.CutPrefix(line, "*"); ok {
			marked = true
			name = strings.TrimSpace(name)
			active = append(active, name)
			all = append(all, name)
			continue
		}
		all = append(all, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read plugins list: %w", err)
	}
	if marked {
		return active, nil
	}
	return all, nil
}

// ReadPluginsFile reads the plugins.txt at path
func ReadPluginsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plugins list %s: %w", path, err)
	}
	defer f.Close()
	return ParsePluginsList(f)
}

// WithImplicitPlugins prepends the implicit plugins found in pluginsDir that the
// listing does not already name
func WithImplicitPlugins(listed []string, pluginsDir string, implicit []string) []string {
	out := make([]string, 0, len(implicit)+len(listed))
	for _, name := range implicit {
		if containsFold(listed, name) || containsFold(out, name) {
			continue
		}
		if _, err := os.Stat(filepath.Join(pluginsDir, name)); err != nil {
			continue
		}
		out = append(out, name)
	}
	return append(out, listed...)
}

// ResolvePluginPath finds name in dir, ignoring case
func ResolvePluginPath(dir, name string) (string, error) {
	direct := filepath.Join(dir, name)
	if _, err := os.Stat(direct); err == nil {
		return direct, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to list plugins directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(entry.Name(), name) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("plugin %s not found in %s: %w", name, dir, os.ErrNotExist)
}

func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
