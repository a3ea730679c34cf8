// Package logger provides structured logging on top of zerolog.
//
// A process-wide logger is configured once with Init and component loggers
// are obtained with Get. The httpclient package logs every dispatch under
// the "httpclient" component at debug level.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.Get("httpclient")
//	log.Debug("request settled", logger.Fields(logger.FieldStatus, 200))
package logger
