package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

// Error is a GraphQL error with optional source locations.
type Error = gqlerror.Error

// ErrorList is an ordered list of GraphQL errors.
type ErrorList = gqlerror.List

// Errorf creates an Error without source position.
func Errorf(format string, args ...any) *Error {
	return gqlerror.Errorf(format, args...)
}

// ErrorPosf creates an Error located at pos.
func ErrorPosf(pos *Position, format string, args ...any) *Error {
	return gqlerror.ErrorPosf(pos, format, args...)
}

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
