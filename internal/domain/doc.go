// Package domain provides the shared value types of a release session.
// These types are used across the stage packages so that each stage reads
// the same immutable session description.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, internal/version, internal/execmode, standard library
//   - MUST NOT import: any stage package (resolver, prepare, build, publish, announce, session)
package domain
