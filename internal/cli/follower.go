package cli

import (
	"time"

	"github.com/sirupsen/logrus"
)

// logFollower reports the progress of domain generation through a logger.
type logFollower struct {
	logger  *logrus.Logger
	every   int
	desc    string
	ticks   int
	started time.Time
}

func newLogFollower(logger *logrus.Logger) *logFollower {
	return &logFollower{logger: logger, every: 1000}
}

func (l *logFollower) StepStart(desc string, _ int) {
	l.desc, l.ticks, l.started = desc, 0, time.Now()
	l.logger.Debug(desc)
}

func (l *logFollower) Tick() {
	l.ticks++
	if l.ticks%l.every == 0 {
		l.logger.WithFields(logrus.Fields{"step": l.desc, "candidates": l.ticks}).Trace("still searching")
	}
}

func (l *logFollower) StepDone() {
	l.logger.WithFields(logrus.Fields{
		"step":       l.desc,
		"candidates": l.ticks,
		"took":       time.Since(l.started).Round(time.Millisecond),
	}).Debug("done")
}
