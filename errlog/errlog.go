// Package errlog keeps the per-run failure log: a plain text file, truncated
// when the tool starts, receiving one line per warning or error logged.
package errlog

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Sink is a logrus hook appending entry messages to the log file.
type Sink struct {
	path string
	file *os.File
}

// Open creates or truncates the log file at path.
func Open(path string) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}

	return &Sink{path: path, file: f}, nil
}

func (s *Sink) Path() string {
	return s.path
}

func (s *Sink) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
	}
}

func (s *Sink) Fire(entry *logrus.Entry) error {
	_, err := fmt.Fprintln(s.file, entry.Message)
	return err
}

func (s *Sink) Close() error {
	return s.file.Close()
}

// Attach hooks the sink into log. Warnings must stay enabled for the retry
// notice to reach the file.
func (s *Sink) Attach(log *logrus.Logger) {
	if !log.IsLevelEnabled(logrus.WarnLevel) {
		log.SetLevel(logrus.WarnLevel)
	}

	log.AddHook(s)
}
