package potion

import (
	"fmt"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/gamedata"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/shared"
)

// CraftErrorKind classifies why a combination of ingredients is not a potion
type CraftErrorKind string

const (
	NotEnoughIngredients CraftErrorKind = "NOT_ENOUGH_INGREDIENTS"
	TooManyIngredients   CraftErrorKind = "TOO_MANY_INGREDIENTS"
	DuplicateIngredient  CraftErrorKind = "DUPLICATE_INGREDIENT"
	InvalidIngredient    CraftErrorKind = "INVALID_INGREDIENT"
	NoSharedEffects      CraftErrorKind = "NO_SHARED_EFFECTS"
)

// CraftError is returned by FromIngredients. It is an expected outcome during the
// combination search, not a failure.
type CraftError struct {
	*shared.DomainError
	Kind CraftErrorKind
	// Ingredient is the offending ingredient for DuplicateIngredient and InvalidIngredient
	Ingredient *gamedata.Ingredient
}

// Is matches any CraftError of the same kind, so errors.Is works against the Err* values
func (e *CraftError) Is(target error) bool {
	t, ok := target.(*CraftError)
	return ok && t.Kind == e.Kind
}

func newCraftError(kind CraftErrorKind, message string, ingredient *gamedata.Ingredient) *CraftError {
	return &CraftError{
		DomainError: shared.NewDomainError(message),
		Kind:        kind,
		Ingredient:  ingredient,
	}
}

var (
	ErrNotEnoughIngredients = newCraftError(NotEnoughIngredients, fmt.Sprintf("must supply at least %d ingredients", MinIngredients), nil)
	ErrTooManyIngredients   = newCraftError(TooManyIngredients, fmt.Sprintf("cannot use more than %d ingredients", MaxIngredients), nil)
	ErrDuplicateIngredient  = newCraftError(DuplicateIngredient, "cannot use the same ingredient more than once in a potion", nil)
	ErrInvalidIngredient    = newCraftError(InvalidIngredient, "ingredient has invalid data (duplicate effects)", nil)
	ErrNoSharedEffects      = newCraftError(NoSharedEffects, "none of the ingredients have a shared effect", nil)
)

func duplicateIngredientError(ing *gamedata.Ingredient) *CraftError {
	return newCraftError(DuplicateIngredient,
		fmt.Sprintf("cannot use ingredient %s more than once in a potion", ing.DisplayName()), ing)
}

func invalidIngredientError(ing *gamedata.Ingredient) *CraftError {
	return newCraftError(InvalidIngredient,
		fmt.Sprintf("ingredient %s has invalid data (duplicate effects)", ing.DisplayName()), ing)
}
