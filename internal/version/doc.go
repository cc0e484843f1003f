// Package version holds the typed release vocabulary: release branch names,
// tag versions, build candidates, release labels, and the immutable set of
// versions a session produces.
//
// Every string that enters relcut from the operator or the build-status
// source is parsed here, at the boundary. Business logic never re-parses
// names with ad hoc string matching.
package version
