// Package config loads service configuration with Viper.
//
// A YAML file supplies the base values, an optional .env file is loaded into
// the process environment, and environment variables carrying the service
// prefix override both. TRANSDUCE_SERVER_PORT, for example, sets server.port
// for a service named "transduce".
//
//	var cfg AppConfig
//	err := config.LoadConfig("transduce", &cfg, config.WithConfigFile("config.yml"))
package config
