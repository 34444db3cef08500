package queries

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/gamedata"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/shared"
)

// IngredientFilter restricts the ingredients a search may use. Names match the
// ingredient display name case-insensitively.
type IngredientFilter struct {
	Allow []string
	Deny  []string
}

// Validate rejects filters that set both lists
func (f IngredientFilter) Validate() error {
	if len(f.Allow) > 0 && len(f.Deny) > 0 {
		return shared.NewValidationError("filter", "allow list and deny list are mutually exclusive")
	}
	return nil
}

// Apply returns the ingredients passing the filter and the list entries that
// matched no ingredient
func (f IngredientFilter) Apply(ingredients []*gamedata.Ingredient) ([]*gamedata.Ingredient, []string) {
	list, allow := f.Deny, false
	if len(f.Allow) > 0 {
		list, allow = f.Allow, true
	}
	if len(list) == 0 {
		return ingredients, nil
	}

	wanted := make(map[string]string, len(list))
	for _, name := range list {
		wanted[normalizeName(name)] = name
	}
	matched := make(map[string]bool, len(wanted))

	out := make([]*gamedata.Ingredient, 0, len(ingredients))
	for _, ing := range ingredients {
		key := normalizeName(ing.DisplayName())
		_, listed := wanted[key]
		if listed {
			matched[key] = true
		}
		if listed == allow {
			out = append(out, ing)
		}
	}

	var unmatched []string
	for key, name := range wanted {
		if !matched[key] {
			unmatched = append(unmatched, name)
		}
	}
	slices.Sort(unmatched)
	return out, unmatched
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// LoadNameList reads ingredient names from path. Files ending in .yaml or .yml hold a
// YAML sequence of strings; anything else has one name per line, with blank lines and
// lines starting with # ignored.
func LoadNameList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open name list: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAMLNames(f, path)
	default:
		return ParseNameLines(f)
	}
}

func parseYAMLNames(r io.Reader, path string) ([]string, error) {
	var names []string
	if err := yaml.NewDecoder(r).Decode(&names); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse name list %s: %w", path, err)
	}
	out := names[:0]
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}

// ParseNameLines reads one name per line
func ParseNameLines(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read name list: %w", err)
	}
	return names, nil
}
