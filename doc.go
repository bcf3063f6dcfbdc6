// Package identity implements bearer-token authentication for the platform
// services: account lifecycle (register, verify, login, password reset),
// access/refresh token issuance with revocation, and the claims codec the
// edge gateway verifies requests with.
//
// Subpackages provide the persistent store (repository), the edge gateway
// middleware (middleware/gateware), the HTTP surface (httpapi), outbound
// notifications (notify), and runtime configuration (config).
package identity
