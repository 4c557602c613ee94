// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with console or JSON encoding,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level and format parsing driven by the settings file,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// Every service accepts a context and extracts the logger from it, so room keys
// and component names travel with the entries they produce.
package logger
