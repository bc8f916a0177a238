// Package config provides environment-based configuration.
//
// Loads from a .env file when present (godotenv), validates required fields,
// and splits the backend base URL into a server-side and a browser-facing
// value.
package config
