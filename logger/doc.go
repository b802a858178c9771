// Package logger provides structured logging for the inventory service
// using zerolog.
//
// Fields are passed as map[string]interface{} bags so call sites stay free of
// zerolog types:
//
//	log := logger.GetGlobalLogger().WithComponent("registry")
//	log.Info("printer elected", logger.Fields(logger.FieldPrinter, "bundles", logger.FieldIdentity, 7))
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
package logger
