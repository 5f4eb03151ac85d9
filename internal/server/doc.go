// Package server implements the secure ingestion server: a TCP accept loop
// that performs a mutual TLS handshake per connection, reads a single request
// over the minimal wire protocol, decodes the body into a batch, records it
// in shared state, hands it to the persistence sink and writes the fixed
// response.
//
// Concurrency model: one goroutine per connection. Each connection owns all
// of its state; the only shared mutation point is the state store, which
// serializes internally. A failure on one connection (handshake, timeout,
// truncation, decode) is logged and closes that connection only; the accept
// loop never stops for it.
package server
