package cli

import (
	"fmt"
	"strings"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/potions/queries"
)

// PotionFormatter renders ranked potions for the terminal
type PotionFormatter struct {
	useColors bool
}

// NewPotionFormatter creates a new potion formatter
func NewPotionFormatter(useColors bool) *PotionFormatter {
	return &PotionFormatter{useColors: useColors}
}

// FormatPotions renders every potion with its ingredients as a tree
func (f *PotionFormatter) FormatPotions(potions []queries.PotionDTO) string {
	if len(potions) == 0 {
		return "No potions can be made from these ingredients.\n"
	}

	var builder strings.Builder
	for i, p := range potions {
		f.formatPotion(&builder, i+1, p)
	}
	return builder.String()
}

func (f *PotionFormatter) formatPotion(builder *strings.Builder, rank int, p queries.PotionDTO) {
	fmt.Fprintf(builder, "%3d. %s%s%s (%d gold)\n", rank, f.typeColor(p.Type), p.Name, f.colorReset(), p.GoldValue)
	if p.Description != "" {
		fmt.Fprintf(builder, "     %s\n", p.Description)
	}
	for i, name := range p.Ingredients {
		branch := "├── "
		if i == len(p.Ingredients)-1 {
			branch = "└── "
		}
		fmt.Fprintf(builder, "     %s%s\n", branch, name)
	}
}

// FormatSummary creates a one-line summary of a search
func (f *PotionFormatter) FormatSummary(resp *queries.SuggestPotionsResponse) string {
	summary := fmt.Sprintf("Showing %d of %d potions from %d ingredients (%s)",
		len(resp.Potions), resp.Found, resp.Ingredients, resp.Source)
	if resp.Purged > 0 {
		summary += fmt.Sprintf(", %d invalid ingredients skipped", resp.Purged)
	}
	return summary + "\n"
}

// typeColor returns the ANSI color code for a potion type
func (f *PotionFormatter) typeColor(potionType string) string {
	if !f.useColors {
		return ""
	}

	switch potionType {
	case "Poison":
		return "\033[31m" // Red
	case "Potion":
		return "\033[32m" // Green
	default:
		return ""
	}
}

// colorReset returns ANSI reset code
func (f *PotionFormatter) colorReset() string {
	if !f.useColors {
		return ""
	}
	return "\033[0m"
}
