// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (roles, states, handshake results) and contracts
// (interfaces) only.
package domain
