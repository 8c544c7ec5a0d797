// Package syntax contains the query front-ends and the dispatcher that
// routes a raw query string to one of them.
//
// Each front-end implements QuerySyntax: a cheap anchored-regex sniff
// (CanHandle), a full parse into ir.GraphIR, and a priority. The
// dispatcher tries front-ends in descending priority order and commits to
// the first one whose sniff accepts the input; that front-end's parse
// result is final. There is no fallback chaining: if a matching
// front-end cannot parse the input, the caller gets that front-end's
// diagnostic rather than a less specific one from a laxer grammar.
//
// Built-in front-ends:
//
//   - cypher (priority 55): MATCH patterns with WHERE and RETURN.
//   - jaq (priority 10): pipe-style graph functions with post-filters.
//     The fallback; any pipe expression could plausibly belong to it, so
//     it must be tried last.
//
// All front-ends are stateless and safe for concurrent use.
package syntax
