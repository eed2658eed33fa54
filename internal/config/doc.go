// Package config handles configuration loading for wallet-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  scope_secret: "${WALLET_GATEWAY_SCOPE_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	session:
//	  connect_timeout: "2m"
//	  snapshot_ttl: "24h"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//
// Database (snapshot mirror storage):
//
//	database:
//	  path: "/var/lib/wallet-gateway/gateway.db"
//
// Scope tokens:
//
//	auth:
//	  scope_secret: "${WALLET_GATEWAY_SCOPE_SECRET}"
//	  scope_ttl: "12h"
//
// Wallet provider pass-through (opaque to the gateway):
//
//	wallet:
//	  portal_url: "https://portal.example.com"
//	  rpc_url: "${WALLET_RPC_URL}"
//	  paymaster_url: "${WALLET_PAYMASTER_URL}"
//	  stub_latency: "500ms"
//
// Session behavior:
//
//	session:
//	  mirror: true
//	  clear_on_logout: false
//	  connect_timeout: "2m"
//	  snapshot_ttl: "24h"
//
// Tailscale:
//
//	tailscale:
//	  enabled: false
//	  hostname: "wallet-gateway"
//	  auth_key: "${TS_AUTHKEY}"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
