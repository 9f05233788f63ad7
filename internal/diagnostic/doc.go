// Package diagnostic provides positioned errors, warnings and notes for the
// mock generator.
//
// Every derivation failure is a [Code] attached to the source construct that
// caused it (the interface keyword of a union, a variant, a directive, a
// field). Codes double as sentinel errors:
//
//	if errors.Is(err, diagnostic.CodeAmbiguousVariantSelection) { ... }
//
// A failing type never aborts the derivation of unrelated types; callers
// collect the errors into [Diagnostics] and decide what to write.
package diagnostic
