// Package errors provides the classified error primitives used across docsite.
//
// Every error that crosses a package boundary in the build pipeline is a
// ClassifiedError: it carries a category (front matter, content, link,
// filesystem, ...), a severity that decides whether the build continues, and a
// free-form context map (path, line range, link target).
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryFrontMatter, "front matter is not valid YAML").
//		Warning().
//		WithContext("path", doc.Path).
//		WithCause(yamlErr).
//		Build()
package errors
