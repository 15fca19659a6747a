// Package notify shows short messages to the user outside any form.
package notify

import (
	"log/slog"
	"sync"

	"github.com/forumstartup/forum/shared/logger"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// Confirm asks the user a yes/no question.
type Confirm func(prompt string) bool

// Always answers every question with yes.
func Always(string) bool { return true }

// Log writes notifications to the structured log.
type Log struct {
	log *slog.Logger
}

func NewLog() *Log {
	return &Log{log: logger.For("notify")}
}

func (l *Log) Success(msg string) { l.log.Info(msg, "level", LevelSuccess) }
func (l *Log) Error(msg string)   { l.log.Error(msg, "level", LevelError) }
func (l *Log) Info(msg string)    { l.log.Info(msg, "level", LevelInfo) }

type Message struct {
	Level Level
	Text  string
}

// Recorder keeps notifications in memory, for a UI to drain or for tests.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Error(msg string)   { r.add(LevelError, msg) }
func (r *Recorder) Info(msg string)    { r.add(LevelInfo, msg) }

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	r.messages = append(r.messages, Message{Level: level, Text: msg})
	r.mu.Unlock()
}

// Drain returns the recorded messages and forgets them.
func (r *Recorder) Drain() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.messages
	r.messages = nil
	return out
}
