package gamedata

import (
	"fmt"
	"strings"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/formid"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/shared"
)

// UnknownFormIDError reports a reference to a record that does not exist
type UnknownFormIDError struct {
	*shared.DomainError
	FormID formid.GlobalFormID
}

func NewUnknownFormIDError(id formid.GlobalFormID) *UnknownFormIDError {
	return &UnknownFormIDError{
		DomainError: shared.NewDomainError(fmt.Sprintf("the form ID %s is unknown", id)),
		FormID:      id,
	}
}

// IngredientErrorKind classifies an IngredientError
type IngredientErrorKind string

const (
	ReferencesUnknownMagicEffects IngredientErrorKind = "REFERENCES_UNKNOWN_MAGIC_EFFECTS"
)

// IngredientError describes an ingredient whose data is inconsistent with the rest of the dataset
type IngredientError struct {
	Kind       IngredientErrorKind
	Ingredient *Ingredient
	Unknown    []*UnknownFormIDError
}

func (e *IngredientError) Error() string {
	ids := make([]string, len(e.Unknown))
	for i, u := range e.Unknown {
		ids[i] = u.FormID.String()
	}
	return fmt.Sprintf("ingredient %s references unknown magic effects: %s",
		e.Ingredient.DisplayName(), strings.Join(ids, ", "))
}

// IngredientErrors collects every invalid ingredient found by a validation pass
type IngredientErrors []*IngredientError

func (e IngredientErrors) Error() string {
	lines := make([]string, len(e))
	for i, err := range e {
		lines[i] = err.Error()
	}
	return fmt.Sprintf("%d invalid ingredients:\n%s", len(e), strings.Join(lines, "\n"))
}
