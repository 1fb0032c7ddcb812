// Copyright 2018 The klaytn Authors
// This file is part of the klaytn library.
//
// The klaytn library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The klaytn library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the klaytn library. If not, see <http://www.gnu.org/licenses/>.

// Package log wraps go.uber.org/zap behind the small contextual-logger
// interface the rest of this module was written against.
package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Module names, analogous to log.Common / log.CMDKCN in the teacher codebase.
const (
	TxPool   = "txpool"
	TxStatus = "txstatus"
	Producer = "producer"
	Importer = "importer"
	DaBridge = "dabridge"
	Node     = "node"
	CmdUtils = "cmdutils"
	Storage  = "storagedb"
)

var (
	baseOnce sync.Once
	base     *zap.Logger
)

func rootLogger() *zap.Logger {
	baseOnce.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
		l, err := cfg.Build(zap.AddCallerSkip(1))
		if err != nil {
			// Never expected outside of a misconfigured encoder; fall back
			// to a bare logger rather than leaving the process silent.
			l = zap.NewNop()
			_, _ = os.Stderr.WriteString("log: falling back to no-op logger: " + err.Error() + "\n")
		}
		base = l
	})
	return base
}

// Logger is a module-scoped contextual logger. Key/value pairs follow the
// same "field name, value, field name, value, ..." calling convention as the
// teacher's log.Logger, translated to zap's SugaredLogger underneath.
type Logger struct {
	s *zap.SugaredLogger
}

// NewModuleLogger mirrors log.NewModuleLogger(log.Common) from the teacher:
// one named logger per subsystem, built once and reused.
func NewModuleLogger(module string) *Logger {
	return &Logger{s: rootLogger().Sugar().With("module", module)}
}

// New attaches extra static context to a fresh logger, mirroring
// log.New("database", file) in the teacher's leveldb wrapper.
func New(keyvals ...interface{}) *Logger {
	return &Logger{s: rootLogger().Sugar().With(keyvals...)}
}

func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{s: l.s.With(keyvals...)}
}

func (l *Logger) Trace(msg string, keyvals ...interface{}) { l.s.Debugw(msg, keyvals...) }
func (l *Logger) Debug(msg string, keyvals ...interface{}) { l.s.Debugw(msg, keyvals...) }
func (l *Logger) Info(msg string, keyvals ...interface{})  { l.s.Infow(msg, keyvals...) }
func (l *Logger) Warn(msg string, keyvals ...interface{})  { l.s.Warnw(msg, keyvals...) }
func (l *Logger) Error(msg string, keyvals ...interface{}) { l.s.Errorw(msg, keyvals...) }
func (l *Logger) Crit(msg string, keyvals ...interface{}) {
	l.s.Errorw(msg, keyvals...)
	os.Exit(1)
}
