package options

import "fmt"

// OptionKeyUnknownError is returned for an option key the parser does not
// recognise.
type OptionKeyUnknownError struct {
	Key string
}

func (e OptionKeyUnknownError) Error() string {
	return fmt.Sprintf("'%s' is not a valid option", e.Key)
}

// OptionValueInvalidError is returned when a known option carries a value
// outside its domain.
type OptionValueInvalidError struct {
	Key   string
	Value string
}

func (e OptionValueInvalidError) Error() string {
	return fmt.Sprintf("'%s' is an invalid value for option '%s'", e.Value, e.Key)
}

// MissingOutputFormatError is returned when no option set names an output
// format and the object path has no extension to infer one from.
type MissingOutputFormatError struct {
	Path string
}

func (e MissingOutputFormatError) Error() string {
	return fmt.Sprintf("no output format given and none can be inferred from '%s'", e.Path)
}

// InvalidOutputFormatError is returned when the format inferred from the
// object path is not one that can be produced.
type InvalidOutputFormatError struct {
	Format string
}

func (e InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("'%s' is not a supported output format", e.Format)
}

// MalformedFragmentError is returned when a fragment does not have the
// "<options>/<path>" shape.
type MalformedFragmentError struct {
	Fragment string
	Reason   string
}

func (e MalformedFragmentError) Error() string {
	return fmt.Sprintf("malformed fragment '%s': %s", e.Fragment, e.Reason)
}

// SignatureMissingError is returned when signing is required and the
// fragment carries no signature.
type SignatureMissingError struct{}

func (SignatureMissingError) Error() string {
	return "request signature is missing"
}

// SignatureMismatchError is returned when the fragment signature does not
// match the one computed with the shared token.
type SignatureMismatchError struct{}

func (SignatureMismatchError) Error() string {
	return "request signature does not match"
}
