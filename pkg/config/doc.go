// Package config loads typed configuration structs from environment variables
// using github.com/caarlos0/env tags, with optional .env files via
// github.com/joho/godotenv. Each struct type is parsed once per process and
// cached.
package config
