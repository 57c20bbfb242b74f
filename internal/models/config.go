// Package models contains the data structures used throughout gowake.
package models

import (
	"time"

	"github.com/fgeck/gowake/internal/macaddr"
)

// WakeConfig holds the defaults applied to every wake request.
type WakeConfig struct {
	Host       string            // destination host or IP; broadcast if empty
	Port       uint16            // destination port
	SourcePort uint16            // local port; 0 for ephemeral
	SecureOn   *macaddr.SecureOn // nil if not configured
	Wait       time.Duration     // pause between packets in sequential mode
	FailFast   bool              // stop at the first failed target
	Parallel   int               // max concurrent sends; <= 1 is sequential
	PreferIPv6 bool              // prefer AAAA records when resolving Host

	// ContinueOnParseError skips malformed wakeup file lines instead of
	// aborting before anything is sent.
	ContinueOnParseError bool
}
