// Package utils exposes reusable helpers consumed by the prsync commands.
//
// ConfigurationLoader layers embedded defaults, configuration files, and
// environment variables through Viper. LoggerFactory builds the zap loggers.
package utils
