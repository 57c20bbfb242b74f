// Package wakeupfile parses wakeup files.
//
// A wakeup file lists one target per line:
//
//	<hardware-address> [host=<ip-or-dns>] [port=<1-65535>] [secure-on=<token>]
//
// Modifiers may appear in any order, each at most once. Blank lines and lines
// starting with '#' are ignored. Leading and trailing whitespace is ignored.
package wakeupfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"

	"github.com/fgeck/gowake/internal/macaddr"
	"github.com/fgeck/gowake/internal/models"
)

// Modifier keys.
const (
	KeyHost     = "host"
	KeyPort     = "port"
	KeySecureOn = "secure-on"
)

// Stdin is the path Open treats as standard input.
const Stdin = "-"

// LineError is a parse error tied to a line of a wakeup file.
type LineError struct {
	Line int    // 1-based
	Text string // the trimmed line
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Options controls how Read treats malformed lines.
type Options struct {
	// ContinueOnError collects line errors instead of stopping at the first.
	ContinueOnError bool
}

// ParseLine parses a single significant line into a request.
func ParseLine(s string) (models.WakeRequest, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return models.WakeRequest{}, fmt.Errorf("%w: empty line", macaddr.ErrInvalidFormat)
	}

	addr, err := macaddr.ParseHardwareAddr(fields[0])
	if err != nil {
		return models.WakeRequest{}, err
	}
	req := models.WakeRequest{HardwareAddr: addr}

	seen := make(map[string]bool, 3)
	for _, field := range fields[1:] {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return models.WakeRequest{}, fmt.Errorf("%w: unexpected field %q, want key=value", macaddr.ErrInvalidFormat, field)
		}
		if value == "" {
			return models.WakeRequest{}, fmt.Errorf("%w: empty value for %q", macaddr.ErrInvalidFormat, key)
		}
		if seen[key] {
			return models.WakeRequest{}, fmt.Errorf("%w: duplicate modifier %q", macaddr.ErrInvalidFormat, key)
		}
		seen[key] = true

		switch key {
		case KeyHost:
			req.Host = value
		case KeyPort:
			port, err := parsePort(value)
			if err != nil {
				return models.WakeRequest{}, err
			}
			req.Port = port
		case KeySecureOn:
			token, err := macaddr.ParseSecureOn(value)
			if err != nil {
				return models.WakeRequest{}, err
			}
			req.SecureOn = &token
		default:
			return models.WakeRequest{}, fmt.Errorf("%w: unknown modifier %q", macaddr.ErrInvalidFormat, key)
		}
	}

	return req, nil
}

func parsePort(s string) (uint16, error) {
	p, err := strconv.ParseUint(s, 10, 16)
	if err != nil || p == 0 {
		return 0, fmt.Errorf("%w: invalid port %q", macaddr.ErrInvalidFormat, s)
	}
	return uint16(p), nil
}

// Entries returns a lazy sequence over the requests in r, one per
// significant line. Malformed lines yield a *LineError and iteration goes on;
// a read error is yielded last. r is consumed as the sequence is iterated, so
// the sequence can only be iterated once.
func Entries(r io.Reader) iter.Seq2[models.WakeRequest, error] {
	return func(yield func(models.WakeRequest, error) bool) {
		sc := bufio.NewScanner(r)
		line := 0
		for sc.Scan() {
			line++
			text := sc.Text()
			if line == 1 {
				text = strings.TrimPrefix(text, "\ufeff")
			}
			text = strings.TrimSpace(text)
			if text == "" || strings.HasPrefix(text, "#") {
				continue
			}

			req, err := ParseLine(text)
			if err != nil {
				if !yield(models.WakeRequest{}, &LineError{Line: line, Text: text, Err: err}) {
					return
				}
				continue
			}
			req.Line = line
			if !yield(req, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(models.WakeRequest{}, fmt.Errorf("reading line %d: %w", line+1, err))
		}
	}
}

// Read parses all of r. By default it stops at the first error and returns
// the requests parsed so far together with that error. With
// opts.ContinueOnError it skips malformed lines and returns every valid
// request plus the joined line errors. Read errors always stop parsing.
func Read(r io.Reader, opts Options) ([]models.WakeRequest, error) {
	var reqs []models.WakeRequest
	var errs []error

	for req, err := range Entries(r) {
		if err != nil {
			var lineErr *LineError
			if !opts.ContinueOnError || !errors.As(err, &lineErr) {
				if len(errs) == 0 {
					return reqs, err
				}
				return reqs, errors.Join(append(errs, err)...)
			}
			errs = append(errs, err)
			continue
		}
		reqs = append(reqs, req)
	}

	return reqs, errors.Join(errs...)
}

// Open opens the wakeup file at path, or standard input if path is "-".
func Open(path string) (io.ReadCloser, error) {
	if path == Stdin {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening wakeup file: %w", err)
	}
	return f, nil
}
