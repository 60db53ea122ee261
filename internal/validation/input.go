// Package validation builds and evaluates the rule set of a user submission
// from the profile catalog.
package validation

import (
	"mime/multipart"
	"strings"
)

// Field is one submitted field as the rules see it.
type Field struct {
	Name    string
	Present bool
	Value   string
	File    *multipart.FileHeader
}

// Empty reports whether the field carries neither a file nor a non-blank value.
func (f Field) Empty() bool {
	return f.File == nil && strings.TrimSpace(f.Value) == ""
}

// Input is a submitted record: text values and uploaded files keyed by field name.
type Input struct {
	values map[string]string
	files  map[string]*multipart.FileHeader
}

// NewInput trims every text value except the password, which is kept as
// submitted. A field that is only whitespace counts as empty.
func NewInput(values map[string]string, files map[string]*multipart.FileHeader) Input {
	in := Input{
		values: make(map[string]string, len(values)),
		files:  make(map[string]*multipart.FileHeader, len(files)),
	}
	for k, v := range values {
		if k != FieldPassword {
			v = strings.TrimSpace(v)
		}
		in.values[k] = v
	}
	for k, fh := range files {
		if fh != nil {
			in.files[k] = fh
		}
	}
	return in
}

// Has reports whether name was submitted at all, empty or not.
func (in Input) Has(name string) bool {
	if _, ok := in.values[name]; ok {
		return true
	}
	_, ok := in.files[name]
	return ok
}

// Value returns the text value of name, trimmed unless it is the password.
func (in Input) Value(name string) string {
	return in.values[name]
}

// File returns the uploaded file of name, or nil.
func (in Input) File(name string) *multipart.FileHeader {
	return in.files[name]
}

// Field returns the rule view of name.
func (in Input) Field(name string) Field {
	return Field{
		Name:    name,
		Present: in.Has(name),
		Value:   in.values[name],
		File:    in.files[name],
	}
}
