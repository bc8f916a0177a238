// Package server implements the portal's HTTP surface using Echo.
//
// Routes: auth (login/logout/OAuth), the popup bridge, gated resource views
// (people, companies, galleries, pages, accounts, admin users), and health.
// Handlers split by concern: handlers_auth.go, handlers_bridge.go,
// handlers_resources.go, handlers_accounts.go, handlers_health.go.
package server
