// 指示: miu200521358
// Package logging はアプリ全体で共有するロガーを提供する。
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// LogLevel はログ出力レベルを表す。
type LogLevel int

const (
	LOG_LEVEL_DEBUG LogLevel = iota
	LOG_LEVEL_INFO
	LOG_LEVEL_WARN
	LOG_LEVEL_ERROR
)

// ILogger はログ出力の契約を表す。
type ILogger interface {
	Debug(format string, params ...any)
	Info(format string, params ...any)
	Warn(format string, params ...any)
	Error(format string, params ...any)
	SetLevel(level LogLevel)
	Level() LogLevel
	IsDebugEnabled() bool
	With(keyvals ...any) ILogger
	MessageBuffer() *MessageBuffer
}

// Logger は charmbracelet/log を使うロガーを表す。
type Logger struct {
	backend *log.Logger
	level   LogLevel
	buffer  *MessageBuffer
}

// NewLogger はロガーを生成する。w が nil の場合は標準エラーへ出力する。
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		backend: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           log.InfoLevel,
		}),
		level:  LOG_LEVEL_INFO,
		buffer: NewMessageBuffer(),
	}
}

// Debug はデバッグログを出力する。
func (l *Logger) Debug(format string, params ...any) {
	l.write(LOG_LEVEL_DEBUG, format, params...)
}

// Info は情報ログを出力する。
func (l *Logger) Info(format string, params ...any) {
	l.write(LOG_LEVEL_INFO, format, params...)
}

// Warn は警告ログを出力する。
func (l *Logger) Warn(format string, params ...any) {
	l.write(LOG_LEVEL_WARN, format, params...)
}

// Error はエラーログを出力する。
func (l *Logger) Error(format string, params ...any) {
	l.write(LOG_LEVEL_ERROR, format, params...)
}

// SetLevel は出力レベルを設定する。
func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
	l.backend.SetLevel(toBackendLevel(level))
}

// Level は出力レベルを返す。
func (l *Logger) Level() LogLevel {
	return l.level
}

// IsDebugEnabled はデバッグログが有効か判定する。
func (l *Logger) IsDebugEnabled() bool {
	return l.level <= LOG_LEVEL_DEBUG
}

// With はキー値を付与した子ロガーを返す。メッセージバッファは共有する。
func (l *Logger) With(keyvals ...any) ILogger {
	return &Logger{backend: l.backend.With(keyvals...), level: l.level, buffer: l.buffer}
}

// MessageBuffer は出力済みメッセージのバッファを返す。
func (l *Logger) MessageBuffer() *MessageBuffer {
	return l.buffer
}

func (l *Logger) write(level LogLevel, format string, params ...any) {
	if level < l.level {
		return
	}
	message := format
	if len(params) > 0 {
		message = fmt.Sprintf(format, params...)
	}
	l.buffer.append(message)
	switch level {
	case LOG_LEVEL_DEBUG:
		l.backend.Debug(message)
	case LOG_LEVEL_INFO:
		l.backend.Info(message)
	case LOG_LEVEL_WARN:
		l.backend.Warn(message)
	default:
		l.backend.Error(message)
	}
}

func toBackendLevel(level LogLevel) log.Level {
	switch level {
	case LOG_LEVEL_DEBUG:
		return log.DebugLevel
	case LOG_LEVEL_WARN:
		return log.WarnLevel
	case LOG_LEVEL_ERROR:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// MessageBuffer は出力したメッセージを保持する。
type MessageBuffer struct {
	mu    sync.Mutex
	lines []string
}

// NewMessageBuffer はバッファを生成する。
func NewMessageBuffer() *MessageBuffer {
	return &MessageBuffer{}
}

// Lines は保持しているメッセージの複製を返す。
func (b *MessageBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// Clear は保持しているメッセージを破棄する。
func (b *MessageBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}

func (b *MessageBuffer) append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
}

var (
	defaultMu     sync.RWMutex
	defaultLogger ILogger = NewLogger(nil)
)

// DefaultLogger は共有ロガーを返す。
func DefaultLogger() ILogger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger は共有ロガーを差し替える。
func SetDefaultLogger(logger ILogger) {
	if logger == nil {
		return
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}
