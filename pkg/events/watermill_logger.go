package events

import (
	"github.com/ThreeDotsLabs/watermill"

	"rag-chatbot-be/internal/pkg/logger"
)

const watermillModule = "Watermill"

// WatermillLogger routes watermill's internal logging into ILogger.
type WatermillLogger struct {
	logger logger.ILogger
	fields watermill.LogFields
}

func NewWatermillLogger(log logger.ILogger) *WatermillLogger {
	return &WatermillLogger{logger: log}
}

func (l *WatermillLogger) details(fields watermill.LogFields) map[string]interface{} {
	out := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func (l *WatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	d := l.details(fields)
	d["error"] = err
	l.logger.Error(watermillModule, msg, d)
}

func (l *WatermillLogger) Info(msg string, fields watermill.LogFields) {
	l.logger.Info(watermillModule, msg, l.details(fields))
}

func (l *WatermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.logger.Debug(watermillModule, msg, l.details(fields))
}

// Trace is mapped to debug; ILogger has no lower level.
func (l *WatermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.logger.Debug(watermillModule, msg, l.details(fields))
}

func (l *WatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillLogger{logger: l.logger, fields: l.details(fields)}
}

var _ watermill.LoggerAdapter = (*WatermillLogger)(nil)
