package wire

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/ekasa-labs/receiptd/internal/domain"
)

// MaxBodyBytes caps the declared Content-Length a client may announce.
// Anything larger is refused before a single body byte is read.
const MaxBodyBytes = 4 << 20

// ErrBodyTooLarge is returned when the declared Content-Length exceeds
// MaxBodyBytes.
var ErrBodyTooLarge = errors.New("wire: request body too large")

// Header is a single name/value pair in arrival order.
type Header struct {
	Name  string
	Value string
}

// RawRequest is one parsed request. It is transient and lives only for the
// duration of its connection.
type RawRequest struct {
	// Method is the request method verbatim (e.g. "POST")
	Method string

	// Target is the request target (e.g. "/ingest")
	Target string

	// Proto is the protocol version string (e.g. "HTTP/1.1")
	Proto string

	// Headers holds the header lines in arrival order, malformed lines skipped
	Headers []Header

	// Body is the Content-Length-delimited body; nil for non-POST requests
	Body []byte
}

// Header returns the value of the named header, matched case-insensitively.
// When a header appears more than once the last occurrence wins.
func (r *RawRequest) Header(name string) (string, bool) {
	for i := len(r.Headers) - 1; i >= 0; i-- {
		if strings.EqualFold(r.Headers[i].Name, name) {
			return r.Headers[i].Value, true
		}
	}
	return "", false
}

// ContentLength returns the declared body length.
// A missing or non-numeric Content-Length is treated as zero.
func (r *RawRequest) ContentLength() int {
	v, ok := r.Header("Content-Length")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseState tracks progress through the single-request read.
type parseState int

const (
	stateRequestLine parseState = iota
	stateHeaders
	stateBody
	stateDone
)

// ReadRequest reads exactly one request from br.
//
// A stream that closes before a request line arrives yields
// domain.ErrClientClosed; the caller drops the connection without a response.
// The body is read only for POST requests; other methods return with a nil
// Body so the caller can answer without ever touching the stream again. A
// stream that closes short of the declared Content-Length yields
// domain.ErrTruncatedBody.
func ReadRequest(br *bufio.Reader) (*RawRequest, error) {
	req := &RawRequest{}

	for state := stateRequestLine; state != stateDone; {
		switch state {
		case stateRequestLine:
			line, err := readLine(br)
			if err != nil {
				var ne net.Error
				if errors.As(err, &ne) && ne.Timeout() {
					return nil, fmt.Errorf("read request line: %w", err)
				}
				return nil, domain.ErrClientClosed
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				return nil, domain.ErrClientClosed
			}
			req.Method = fields[0]
			if len(fields) > 1 {
				req.Target = fields[1]
			}
			if len(fields) > 2 {
				req.Proto = fields[2]
			}
			state = stateHeaders

		case stateHeaders:
			line, err := readLine(br)
			if err != nil {
				return nil, fmt.Errorf("read headers: %w", domain.ErrTruncatedBody)
			}
			if line == "" {
				if req.Method != "POST" {
					// no body read is ever attempted for non-POST requests
					state = stateDone
				} else {
					state = stateBody
				}
				continue
			}
			name, value, ok := strings.Cut(line, ":")
			if !ok {
				// malformed header line, skipped rather than fatal
				continue
			}
			req.Headers = append(req.Headers, Header{
				Name:  strings.TrimSpace(name),
				Value: strings.TrimSpace(value),
			})

		case stateBody:
			n := req.ContentLength()
			if n > MaxBodyBytes {
				return nil, ErrBodyTooLarge
			}
			body := make([]byte, n)
			if _, err := io.ReadFull(br, body); err != nil {
				return nil, fmt.Errorf("read body: %w", domain.ErrTruncatedBody)
			}
			req.Body = body
			state = stateDone
		}
	}

	return req, nil
}

// readLine reads one CRLF- or LF-terminated line, without the terminator.
// An EOF before the terminator is an error even if bytes were read; the
// framing never leaves a line half-sent.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
