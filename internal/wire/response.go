package wire

import (
	"bytes"
	"fmt"
	"html"
	"io"
)

// The response shape is fixed: always 200 OK with exactly these two headers.
// Decode failures are reported inside the HTML body, not via the status code.
const responseHeader = "HTTP/1.1 200 OK\r\n" +
	"Content-Type: text/html\r\n" +
	"Connection: close\r\n" +
	"\r\n"

// WriteResponse writes the fully-formed response for the given HTML body to
// w in a single write. No chunking or streaming is used.
func WriteResponse(w io.Writer, body string) error {
	var buf bytes.Buffer
	buf.WriteString(responseHeader)
	buf.WriteString(body)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

// SuccessBody renders the acknowledgment for an accepted batch.
func SuccessBody(receiptNumber uint64, itemCount int) string {
	return fmt.Sprintf(
		"<html><body><h1>Receipt recorded</h1><p>receipt #%d, %d item(s)</p></body></html>",
		receiptNumber, itemCount)
}

// ErrorBody renders a human-readable diagnostic for a rejected request.
func ErrorBody(reason string) string {
	return fmt.Sprintf(
		"<html><body><h1>Request rejected</h1><p>%s</p></body></html>",
		html.EscapeString(reason))
}

// UnsupportedMethodBody renders the response for any non-POST request.
func UnsupportedMethodBody(method string) string {
	return fmt.Sprintf(
		"<html><body><h1>Unsupported method</h1><p>%s is not accepted, POST a receipt instead</p></body></html>",
		html.EscapeString(method))
}
