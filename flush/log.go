// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package flush

import "github.com/decred/slog"

// log is the package-level logger used throughout flush. It is disabled by
// default; callers wire a backend with UseLogger.
var log = slog.Disabled

// UseLogger sets the package-wide logger. Not safe for concurrent use with
// package-level functions that log.
func UseLogger(logger slog.Logger) {
	log = logger
}
