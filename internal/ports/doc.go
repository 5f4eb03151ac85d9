// Package ports defines the interfaces (ports) that connect the ingestion
// core to infrastructure adapters.
//
// Ports are the boundaries between the application core and the outside
// world. They define what the core needs from external systems without
// specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [BatchSink]: Durably stores accepted batches
//   - [CounterRepository]: Persists and loads the receipt counter
//
// The server and state packages depend only on these interfaces; concrete
// implementations live in internal/adapters and internal/state.
package ports
