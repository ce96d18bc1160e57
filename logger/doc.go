// Package logger provides structured logging for seqkit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. Library code defaults to
// a no-op logger; applications call Init once and fetch named loggers with
// Get.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("seq")
//	log.Debug("iterator released", logger.Fields(logger.FieldOperator, "Take"))
package logger
