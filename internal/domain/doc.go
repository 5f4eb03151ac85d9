// Package domain contains the core domain entities and value objects for
// receiptd.
//
// This package represents the innermost layer of the architecture. It has no
// dependencies on infrastructure concerns (TLS, sockets, SQLite, logging) and
// contains only the data model and the error taxonomy.
//
// # Entities
//
//   - [LineItem]: A single receipt line (name, unit price, quantity, VAT rate)
//   - [Batch]: An ordered set of line items accepted from one POST, tagged
//     with its receipt number and arrival time
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
