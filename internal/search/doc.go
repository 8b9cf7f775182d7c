// Package search builds product search predicates and merges per-term
// ranked results.
//
// Criteria are turned into a Filter, a list of typed clauses carrying their
// own parameters. A Filter is rendered for a SQL dialect only at the storage
// boundary, so user text never becomes part of the statement. Criteria that
// cannot be understood (an unrecognised price range, a brand of "any") add no
// clause at all.
package search
