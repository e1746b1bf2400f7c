package testutil

import (
	"net/http"

	"registrar/internal/platform/middleware"
)

// WithAdminToken sets the admin token header on req.
func WithAdminToken(req *http.Request, token string) *http.Request {
	req.Header.Set(middleware.AdminTokenHeader, token)
	return req
}

// WithRequestID sets the inbound correlation id header on req.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	req.Header.Set(middleware.RequestIDHeader, requestID)
	return req
}
