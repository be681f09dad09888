package server

func (s *Server) initRoutes() {
	// OAuth flow
	s.RegisterRouteHandler("GET "+RouteLoginRedirect, ChainMiddleware(s.LoginRedirectHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.APIMiddleware()...)) // For form_post response mode

	// Session establishment
	s.RegisterRouteHandler("GET "+RouteSessionBridge, ChainMiddleware(s.SessionBridgeHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteEstablishSession, ChainMiddleware(s.EstablishSessionHandler(), s.APIMiddleware()...))

	// Session lifecycle
	s.RegisterRouteHandler("GET "+RouteSession, ChainMiddleware(s.SessionInfoHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteSession, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteHeartbeat, ChainMiddleware(s.HeartbeatHandler(), s.APIMiddleware()...))
}
