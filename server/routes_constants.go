package server

// Route path constants
// All gateway routes are defined here to ensure consistency and prevent typos
const (
	// Auth flow routes
	RouteLoginRedirect = "/auth/login-redirect"
	RouteCallback      = "/auth/callback"

	// Session establishment routes
	RouteSessionBridge    = "/auth/session-bridge"
	RouteEstablishSession = "/auth/establish-session"

	// Session lifecycle routes
	RouteSession   = "/auth/session"
	RouteHeartbeat = "/auth/heartbeat"

	// Sign-in entry point owned by the frontend; failed flows land
	// here with a generic error flag
	RouteSignIn = "/auth/signin"
)
