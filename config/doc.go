// Package config loads engine defaults from config files and environment
// variables.
//
// Configuration is resolved in layers: a config.yml file (if found), then a
// .env file, then process environment variables. Callers embed or construct
// EngineConfig and hand the loaded values to mapper.Options.
//
//	var cfg config.EngineConfig
//	if err := config.Load("parmap", &cfg); err != nil { ... }
//	opts := mapper.Options{Parallelism: cfg.Parallelism, BatchSize: cfg.BatchSize}
package config
