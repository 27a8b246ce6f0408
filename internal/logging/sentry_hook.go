package logging

import (
	"errors"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// SentryHook forwards log entries of the given levels to sentry.
type SentryHook struct {
	levels  []logrus.Level
	capture func(*sentry.Event) *sentry.EventID
}

func NewSentryHook(levels []logrus.Level) *SentryHook {
	return &SentryHook{
		levels:  levels,
		capture: sentry.CaptureEvent,
	}
}

func (h *SentryHook) Levels() []logrus.Level {
	return h.levels
}

func (h *SentryHook) Fire(entry *logrus.Entry) error {
	if h.capture(NewSentryEvent(entry)) == nil {
		return errors.New("sentry event not captured")
	}
	return nil
}

// NewSentryEvent maps a log entry to a sentry event. Entry fields become
// event extras, an error field becomes the event exception.
func NewSentryEvent(entry *logrus.Entry) *sentry.Event {
	event := sentry.NewEvent()
	event.Level = sentryLevel(entry.Level)
	event.Message = entry.Message
	event.Timestamp = entry.Time
	event.Logger = "logrus"

	for k, v := range entry.Data {
		if err, ok := v.(error); ok && k == logrus.ErrorKey {
			event.Exception = append(event.Exception, sentry.Exception{
				Type:  entry.Message,
				Value: err.Error(),
			})
			continue
		}
		event.Extra[k] = v
	}
	return event
}

func sentryLevel(level logrus.Level) sentry.Level {
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel:
		return sentry.LevelFatal
	case logrus.ErrorLevel:
		return sentry.LevelError
	case logrus.WarnLevel:
		return sentry.LevelWarning
	case logrus.InfoLevel:
		return sentry.LevelInfo
	default:
		return sentry.LevelDebug
	}
}
