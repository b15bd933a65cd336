// Package forms validates user input for every HTTP form and CLI command.
//
// Each form is a plain struct decoded from url.Values. Validate returns a [Validation]
// listing field-level [FieldError]s with stable [Code]s, so callers never inspect
// error strings. Describe returns the form's field descriptors, which the HTTP layer
// serves on GET so a renderer can build the form.
package forms
