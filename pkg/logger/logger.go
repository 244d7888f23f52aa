package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with agent-specific field helpers.
type Logger struct {
	*zap.Logger
}

// Options configures logger construction.
type Options struct {
	Level  string
	Format string
	Async  bool // buffered, async writes
}

// New creates a new logger.
func New(level string, format string) (*Logger, error) {
	return NewWithOptions(Options{
		Level:  level,
		Format: format,
		Async:  false,
	})
}

// NewAsync creates a new logger with buffered asynchronous writes.
func NewAsync(level string, format string) (*Logger, error) {
	return NewWithOptions(Options{
		Level:  level,
		Format: format,
		Async:  true,
	})
}

// NewWithOptions creates a new logger with the given options.
func NewWithOptions(opts Options) (*Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(opts.Level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	var encoder zapcore.Encoder
	var encoderConfig zapcore.EncoderConfig

	if opts.Format == "json" {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var writeSyncer zapcore.WriteSyncer
	if opts.Async {
		// 8KB buffer, flushed on fill, on Sync(), and by zap's default
		// 30s interval (FlushInterval 0 selects that default)
		writeSyncer = &zapcore.BufferedWriteSyncer{
			WS:            zapcore.AddSync(os.Stdout),
			Size:          8 * 1024,
			FlushInterval: 0,
		}
	} else {
		writeSyncer = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(encoder, writeSyncer, zapLevel)

	logger := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)

	return &Logger{Logger: logger}, nil
}

// WithFields returns a logger with additional structured fields attached.
func (l *Logger) WithFields(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}

// WithRequestID attaches request_id to the logger.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.WithFields(zap.String("request_id", requestID))
}

// WithAgentID attaches agent_id to the logger.
func (l *Logger) WithAgentID(agentID string) *Logger {
	return l.WithFields(zap.String("agent_id", agentID))
}

// WithMatchID attaches match_id to the logger.
func (l *Logger) WithMatchID(matchID string) *Logger {
	return l.WithFields(zap.String("match_id", matchID))
}

// WithRoundID attaches round_id to the logger.
func (l *Logger) WithRoundID(roundID int) *Logger {
	return l.WithFields(zap.Int("round_id", roundID))
}

// WithConversationID attaches conversation_id to the logger.
func (l *Logger) WithConversationID(conversationID string) *Logger {
	return l.WithFields(zap.String("conversation_id", conversationID))
}

// LogError logs an error with additional context fields.
func (l *Logger) LogError(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	l.Error(msg, fields...)
}

// Sync flushes the logger's buffer.
func (l *Logger) Sync() error {
	return l.Logger.Sync()
}
