/*
Package dsl provides a Go DSL for programmatically constructing rewind machine definitions.

It allows developers to define machines using a type-safe, fluent builder pattern
instead of relying on external YAML or JSON files. This is particularly useful for
tests, generated definitions and leveraging IDE autocompletion.

Example usage:

	cfg, err := dsl.New("draft").
		Add("draft").On("submit", "review").
		Add("review").Describe("Waiting for an editor").
		On("approve", "published").
		On("reject", "draft").
		Add("published").
		Build()
	if err != nil {
		// unknown targets, missing initial state, ...
	}
	m, _ := rewind.New(cfg)
*/
package dsl
