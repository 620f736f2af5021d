/*
   Velociraptor - Dig Deeper
   Copyright (C) 2019-2025 Rapid7 Inc.

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as published
   by the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	config_types "www.velocidex.com/golang/minioncrypt/config/types"
)

type Component string

var (
	CryptoComponent    = Component("Crypto")
	KeyStoreComponent  = Component("KeyStore")
	HandshakeComponent = Component("Handshake")
	ToolComponent      = Component("Tool")

	mu sync.Mutex

	// All loggers share a single logrus instance so a log file hook
	// added once applies to every component.
	root_logger = newRootLogger(os.Stderr)

	contexts = make(map[Component]*LogContext)

	// Messages logged before the config is loaded.
	prelogs []string

	SuppressLogging = false
)

type LogContext struct {
	*logrus.Entry
}

func (self *LogContext) Debug(format string, v ...interface{}) {
	self.Entry.Debugf(format, v...)
}

func (self *LogContext) Info(format string, v ...interface{}) {
	self.Entry.Infof(format, v...)
}

func (self *LogContext) Warn(format string, v ...interface{}) {
	self.Entry.Warnf(format, v...)
}

func (self *LogContext) Error(format string, v ...interface{}) {
	self.Entry.Errorf(format, v...)
}

func newRootLogger(out io.Writer) *logrus.Logger {
	result := logrus.New()
	result.SetOutput(out)
	result.SetFormatter(&Formatter{})
	result.SetLevel(logrus.InfoLevel)
	return result
}

// GetLogger returns the logger for the component. The config may be
// nil in which case the defaults are used.
func GetLogger(config_obj *config_types.Config, component *Component) *LogContext {
	mu.Lock()
	defer mu.Unlock()

	ctx, pres := contexts[*component]
	if pres {
		return ctx
	}

	ctx = &LogContext{
		Entry: root_logger.WithField("component", string(*component)),
	}
	contexts[*component] = ctx
	return ctx
}

// InitLogging applies the logging section of the config. It may be
// called multiple times.
func InitLogging(config_obj *config_types.Config) error {
	mu.Lock()
	defer mu.Unlock()

	level := logrus.InfoLevel
	if config_obj != nil && config_obj.Verbose {
		level = logrus.DebugLevel
	}

	if config_obj != nil && config_obj.Logging != nil &&
		config_obj.Logging.Level != "" {
		parsed, err := logrus.ParseLevel(config_obj.Logging.Level)
		if err != nil {
			return fmt.Errorf("Invalid logging level %v: %w",
				config_obj.Logging.Level, err)
		}
		level = parsed
	}

	if SuppressLogging {
		root_logger.SetOutput(io.Discard)
	}
	root_logger.SetLevel(level)

	if config_obj != nil && config_obj.Logging != nil &&
		config_obj.Logging.File != "" {
		err := addLogFile(config_obj.Logging.File)
		if err != nil {
			return err
		}
	}

	// Flush early messages into the real logger.
	for _, msg := range prelogs {
		root_logger.WithField("component", string(ToolComponent)).Info(msg)
	}
	prelogs = nil

	return nil
}

func addLogFile(filename string) error {
	fd, err := os.OpenFile(filename,
		os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("Unable to open log file %v: %w", filename, err)
	}

	hook := lfshook.NewHook(lfshook.WriterMap{
		logrus.DebugLevel: fd,
		logrus.InfoLevel:  fd,
		logrus.WarnLevel:  fd,
		logrus.ErrorLevel: fd,
		logrus.FatalLevel: fd,
		logrus.PanicLevel: fd,
	}, &logrus.JSONFormatter{})
	root_logger.AddHook(hook)
	return nil
}

// Prelog records a message before logging is initialized.
func Prelog(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	prelogs = append(prelogs, fmt.Sprintf(format, v...))
}

// Reset drops all component loggers and hooks. Used by tests and by
// the config loader before the config is applied.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	root_logger = newRootLogger(os.Stderr)
	contexts = make(map[Component]*LogContext)
}

// RootLogger gives tests access to the shared logrus instance so they
// can attach hooks.
func RootLogger() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()

	return root_logger
}
