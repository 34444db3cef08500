package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Form ID errors

type FormIDError struct {
	*DomainError
}

func NewFormIDError(message string) *FormIDError {
	return &FormIDError{DomainError: &DomainError{Message: message}}
}

// ParseError is returned when a global form ID cannot be parsed from its text form
type ParseError struct {
	*FormIDError
	Input string
}

func NewParseError(input, reason string) *ParseError {
	return &ParseError{
		FormIDError: NewFormIDError(fmt.Sprintf("invalid global form id %q: %s", input, reason)),
		Input:       input,
	}
}

// UnresolvedMasterReferenceError is returned when a raw form ID points at a master slot
// beyond the sources the plugin declares
type UnresolvedMasterReferenceError struct {
	*FormIDError
	Source      string
	Slot        uint8
	MasterCount int
}

func NewUnresolvedMasterReferenceError(source string, slot uint8, masterCount int) *UnresolvedMasterReferenceError {
	return &UnresolvedMasterReferenceError{
		FormIDError: NewFormIDError(fmt.Sprintf(
			"plugin %s references master slot %d but only declares %d masters", source, slot, masterCount)),
		Source:      source,
		Slot:        slot,
		MasterCount: masterCount,
	}
}

// SourceNotInLoadOrderError is returned when a form ID's owning plugin is not part of the load order
type SourceNotInLoadOrderError struct {
	*FormIDError
	Source string
}

func NewSourceNotInLoadOrderError(source string) *SourceNotInLoadOrderError {
	return &SourceNotInLoadOrderError{
		FormIDError: NewFormIDError(fmt.Sprintf("plugin %s is not in the load order", source)),
		Source:      source,
	}
}

// Record errors

type RecordError struct {
	*DomainError
	RecordType string
}

func NewRecordError(recordType, message string) *RecordError {
	return &RecordError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s record: %s", recordType, message)},
		RecordType:  recordType,
	}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
