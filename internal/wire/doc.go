// Package wire implements the minimal HTTP-like framing spoken by receipt
// clients.
//
// The protocol is deliberately narrow: one request per connection, a request
// line, colon-separated headers up to a blank line, and a body delimited by
// Content-Length. There is no chunked encoding, no keep-alive, no pipelining.
// Responses are always HTTP/1.1 200 OK with a text/html body; errors are
// reported inside the body, not via the status code. Clients depend on that
// shape, so it is preserved here.
//
// [ReadRequest] drives a small explicit state machine (request line, headers,
// body, done) so timeout and truncation behavior can be tested independently
// of socket plumbing.
package wire
