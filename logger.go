/*
 * logger.go, part of sire-go.
 *
 *
 * Copyright 2026 The sire-go Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package sire

import (
	"log"
	"os"
	"sync"
)

// Logger is the logging interface used by the library. It can be replaced
// with SetLogger by programs that want the messages elsewhere.
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

// NoOpLogger discards everything.
type NoOpLogger struct{}

func (n *NoOpLogger) Debugf(format string, v ...any) {}
func (n *NoOpLogger) Infof(format string, v ...any)  {}
func (n *NoOpLogger) Warnf(format string, v ...any)  {}
func (n *NoOpLogger) Errorf(format string, v ...any) {}

// NewNoOpLogger creates a no-op logger
func NewNoOpLogger() Logger {
	return &NoOpLogger{}
}

// StdLogger writes through a standard library logger, with a level prefix.
// Debug messages are only written if Verbose is set.
type StdLogger struct {
	L       *log.Logger
	Verbose bool
}

// NewStdLogger returns a StdLogger writing to l, or to stderr if l is nil.
func NewStdLogger(l *log.Logger) *StdLogger {
	if l == nil {
		l = log.New(os.Stderr, "sire: ", log.LstdFlags)
	}
	return &StdLogger{L: l}
}

func (s *StdLogger) Debugf(format string, v ...any) {
	if s.Verbose {
		s.L.Printf("DEBUG "+format, v...)
	}
}
func (s *StdLogger) Infof(format string, v ...any)  { s.L.Printf("INFO "+format, v...) }
func (s *StdLogger) Warnf(format string, v ...any)  { s.L.Printf("WARN "+format, v...) }
func (s *StdLogger) Errorf(format string, v ...any) { s.L.Printf("ERROR "+format, v...) }

var (
	logmu  sync.RWMutex
	logger Logger = NewStdLogger(nil)
)

// SetLogger replaces the logger used by every package of the library.
// A nil l silences the library.
func SetLogger(l Logger) {
	if l == nil {
		l = NewNoOpLogger()
	}
	logmu.Lock()
	logger = l
	logmu.Unlock()
}

// Log returns the current library logger.
func Log() Logger {
	logmu.RLock()
	defer logmu.RUnlock()
	return logger
}
