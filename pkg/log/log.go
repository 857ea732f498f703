package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Global variable, silent until Init is called
var zapLog = zap.NewNop()

// Init replaces the silent default logger. Debug mode uses the human readable
// development encoder, otherwise JSON with epoch millis is written.
func Init(debug bool) {
	var config zap.Config
	var encoderConf zapcore.EncoderConfig

	if debug {
		config = zap.NewDevelopmentConfig()
		encoderConf = zap.NewDevelopmentEncoderConfig()

		// Use a human readable time
		encoderConf.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewProductionConfig()
		encoderConf = zap.NewProductionEncoderConfig()

		// Use unix timestamp millis for production
		encoderConf.EncodeTime = zapcore.EpochMillisTimeEncoder
	}

	// Assign the config
	config.EncoderConfig = encoderConf

	// Build the logger and skip one caller as thats our own log package
	logger, err := config.Build(zap.AddCallerSkip(1))

	// Panic if we cant log correctly
	if err != nil {
		panic(err)
	}

	zapLog = logger
}

// Sync flushes buffered log entries, call it before exiting
func Sync() {
	_ = zapLog.Sync()
}

// Debug is used for per-sentence output, only visible in debug mode
func Debug(message string, fields ...zap.Field) {
	zapLog.Debug(message, fields...)
}

// Info logs lifecycle events such as startup and shutdown
func Info(message string, fields ...zap.Field) {
	zapLog.Info(message, fields...)
}

// Warn reports problems that do not stop the sentence stream
func Warn(message string, fields ...zap.Field) {
	zapLog.Warn(message, fields...)
}

// Error reports failures, the caller decides whether they are fatal
func Error(message string, fields ...zap.Field) {
	zapLog.Error(message, fields...)
}

// Fatal logs and exits the process with status 1, deferred calls do not run
func Fatal(message string, fields ...zap.Field) {
	zapLog.Fatal(message, fields...)
}

// Panic logs and then panics
func Panic(message string, fields ...zap.Field) {
	zapLog.Panic(message, fields...)
}
