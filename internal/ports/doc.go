// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// application needs from external systems without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [Chunker]: Turns one input stream into a sequence of byte-bounded batches
//   - [DocumentSender]: Sends a single batch to the remote ingestion endpoint
//   - [ProgressSink]: Receives progress increments and log lines
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The application layer (internal/pipeline) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (encoding/csv, net/http, stderr progress bars, etc.).
//
// This separation enables:
//   - Testing application logic with mock implementations
//   - Swapping infrastructure without changing business logic
//   - Clear boundaries and dependency direction
package ports
