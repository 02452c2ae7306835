/*
Package schema compiles raw schema documents into validator trees and
drives per-document validation.

A schema document is a YAML tree whose leaves are validator
expressions. New compiles it; AddInclude registers further documents
as named sub-schemas resolvable through include() references, which
bind late, so includes may be added after the expressions that
reference them and may refer to each other mutually.

Validate walks a data document against the compiled tree and returns a
Result carrying every error found, each attributed to a dotted path
inside the document.
*/
package schema
