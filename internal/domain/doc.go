// Package domain contains the core domain entities and value objects for docship.
//
// This package represents the innermost layer of the application. It has no
// dependencies on infrastructure concerns (HTTP, file system, logging) and
// contains only pure business logic.
//
// # Entities
//
//   - [Format]: The wire format of an input file (JSON, NDJSON, CSV)
//   - [Operation]: How delivered documents are applied remotely (replace or update)
//   - [Batch]: A byte-bounded buffer of serialized records ready to be sent
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Focused on business rules and invariants
//   - Testable without mocks or external systems
package domain
