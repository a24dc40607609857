// File: internal/domain/authcontext.go
package domain

// AuthContext carries the caller's identity through the chat pipeline and
// into every store operation that enforces ownership. It is threaded
// explicitly rather than read from ambient request state.
type AuthContext struct {
	UserID          string
	IsAuthenticated bool
}
