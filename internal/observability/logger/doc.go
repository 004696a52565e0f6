// Package logger provee un logger zap singleton para todo el servicio.
//
// Uso:
//
//	logger.Init(logger.Config{Env: "prod", Level: "info", ServiceName: "hellogate"})
//	defer logger.Sync()
//
//	log := logger.Named("gateway")
//	log.Info("callback ok", logger.Email(email))
package logger
