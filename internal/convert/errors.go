package convert

import (
	"errors"
	"fmt"

	"github.com/roach88/sightline/internal/value"
)

// Code categorizes conversion failures.
type Code string

const (
	// CodeUnsupportedKind indicates a value kind outside the known
	// enumeration, or a map value arriving at a scalar operand position.
	CodeUnsupportedKind Code = "UNSUPPORTED_VALUE_KIND"

	// CodeConversionFailed is the generic failure for a leaf that cannot
	// become a backend operand.
	CodeConversionFailed Code = "CONVERSION_FAILED"

	// CodeNotAList indicates indexed access against a non-array value.
	CodeNotAList Code = "NOT_A_LIST_TYPE"

	// CodeNotAMap indicates keyed access against a non-map value.
	CodeNotAMap Code = "NOT_A_MAP_TYPE"

	// CodeIndexOutOfRange indicates indexed access past the end of an
	// array value.
	CodeIndexOutOfRange Code = "INDEX_OUT_OF_RANGE"

	// CodeMissingKey indicates keyed access for an absent map key.
	CodeMissingKey Code = "MISSING_KEY"
)

// ConversionError is the typed failure for all operand and filter
// conversion. It carries the offending kind for diagnostics.
type ConversionError struct {
	Code    Code
	Kind    value.Kind
	Message string
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: %s (kind=%s)", e.Code, e.Message, e.Kind)
}

// IsCode reports whether err is a ConversionError with the given code,
// unwrapping as needed.
func IsCode(err error, code Code) bool {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// IsUnsupportedKind reports an unsupported-kind conversion failure.
func IsUnsupportedKind(err error) bool { return IsCode(err, CodeUnsupportedKind) }

// IsNotAList reports indexed access against a non-array value.
func IsNotAList(err error) bool { return IsCode(err, CodeNotAList) }

// IsNotAMap reports keyed access against a non-map value.
func IsNotAMap(err error) bool { return IsCode(err, CodeNotAMap) }

func errUnsupportedKind(k value.Kind) error {
	return &ConversionError{Code: CodeUnsupportedKind, Kind: k, Message: "unsupported value kind"}
}

func errConversion(k value.Kind, msg string) error {
	return &ConversionError{Code: CodeConversionFailed, Kind: k, Message: msg}
}

func errNotAList(k value.Kind) error {
	return &ConversionError{Code: CodeNotAList, Kind: k, Message: "not a list type"}
}

func errNotAMap(k value.Kind) error {
	return &ConversionError{Code: CodeNotAMap, Kind: k, Message: "not a map type"}
}

func errIndexOutOfRange(k value.Kind, index, length int) error {
	return &ConversionError{
		Code:    CodeIndexOutOfRange,
		Kind:    k,
		Message: fmt.Sprintf("index %d out of range for length %d", index, length),
	}
}

func errMissingKey(k value.Kind, key string) error {
	return &ConversionError{
		Code:    CodeMissingKey,
		Kind:    k,
		Message: fmt.Sprintf("no entry for key %q", key),
	}
}
