// ABOUTME: HTTP API handlers for session scopes: open, connect, disconnect, status, events
// ABOUTME: Scope identity is carried by a signed bearer token; events stream over SSE

package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/2389/wallet-gateway/internal/session"
)

// OpenSessionResponse is the JSON response for POST /api/session.
type OpenSessionResponse struct {
	ScopeToken string `json:"scope_token"`
	Status     string `json:"status"`
	Identity   string `json:"identity,omitempty"`
}

// SessionResponse is the JSON response for session status operations.
type SessionResponse struct {
	Status   string `json:"status"`
	Identity string `json:"identity,omitempty"`
}

// handleOpenSession creates a new scope (or re-opens an existing one
// when a valid token is presented) and returns its token. Re-opening a
// scope with a mirrored snapshot restores the connected view without
// running the connect flow.
func (g *Gateway) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	scope, err := g.scopeFromRequest(r)
	if err != nil {
		// No (or stale) token: mint a fresh scope
		scope = uuid.New().String()
	}

	token, err := g.tokens.Issue(scope)
	if err != nil {
		g.logger.Error("failed to issue scope token", "error", err)
		http.Error(w, "Failed to open session", http.StatusInternalServerError)
		return
	}

	ctrl, err := g.controllers.get(r.Context(), scope)
	if err != nil {
		g.logger.Error("failed to create controller", "scope", scope, "error", err)
		http.Error(w, "Failed to open session", http.StatusInternalServerError)
		return
	}

	g.writeJSON(w, http.StatusOK, OpenSessionResponse{
		ScopeToken: token,
		Status:     ctrl.Status().String(),
		Identity:   identityFor(ctrl),
	})
}

// handleSession returns the current status and display identity.
func (g *Gateway) handleSession(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := g.controllerFromRequest(w, r)
	if !ok {
		return
	}
	g.writeJSON(w, http.StatusOK, SessionResponse{
		Status:   ctrl.Status().String(),
		Identity: identityFor(ctrl),
	})
}

// handleConnect triggers a connect attempt for the scope. The attempt
// runs in the background; callers follow progress via GET /api/session
// or the SSE stream. Responds 202 while the attempt is outstanding.
func (g *Gateway) handleConnect(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := g.controllerFromRequest(w, r)
	if !ok {
		return
	}

	if ctrl.Status() == session.StatusConnected {
		g.writeJSON(w, http.StatusOK, SessionResponse{
			Status:   ctrl.Status().String(),
			Identity: identityFor(ctrl),
		})
		return
	}

	// The attempt outlives this request; a failed connect resets the
	// scope to idle and is reported through the status stream.
	go func() {
		if err := ctrl.Login(g.runCtx); err != nil && !errors.Is(err, session.ErrConnectInFlight) {
			g.logger.Warn("connect attempt failed", "scope", ctrl.Scope(), "error", err)
		}
	}()

	g.writeJSON(w, http.StatusAccepted, SessionResponse{Status: session.StatusConnecting.String()})
}

// handleDisconnect logs the scope out. Always succeeds from the
// caller's perspective: the view never stays stuck in connected.
func (g *Gateway) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := g.controllerFromRequest(w, r)
	if !ok {
		return
	}

	_ = ctrl.Logout(r.Context())

	g.writeJSON(w, http.StatusOK, SessionResponse{Status: ctrl.Status().String()})
}

// handleEvents streams status changes for the scope as SSE events.
// The first event carries the current status so clients render
// immediately; each subsequent event is one committed reconciliation.
func (g *Gateway) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := g.controllerFromRequest(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Subscription is cleaned up when the request context ends
	ch, _ := ctrl.Subscribe(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	g.writeSSEEvent(w, "status", SessionResponse{
		Status:   ctrl.Status().String(),
		Identity: identityFor(ctrl),
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case status, open := <-ch:
			if !open {
				return
			}
			g.writeSSEEvent(w, "status", SessionResponse{
				Status:   status.String(),
				Identity: identityFor(ctrl),
			})
			flusher.Flush()
		}
	}
}

// handleHealth reports gateway liveness.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// scopeFromRequest extracts and verifies the scope token from the
// Authorization header.
func (g *Gateway) scopeFromRequest(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", ErrInvalidToken
	}
	return g.tokens.Verify(token)
}

// controllerFromRequest resolves the request's scope to its controller,
// writing the error response itself when that fails.
func (g *Gateway) controllerFromRequest(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	scope, err := g.scopeFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid or missing scope token", http.StatusUnauthorized)
		return nil, false
	}
	ctrl, err := g.controllers.get(r.Context(), scope)
	if err != nil {
		g.logger.Error("failed to resolve controller", "scope", scope, "error", err)
		http.Error(w, "Failed to resolve session", http.StatusInternalServerError)
		return nil, false
	}
	return ctrl, true
}

// identityFor returns the display identity for connected scopes, empty
// otherwise.
func identityFor(ctrl *session.Controller) string {
	if ctrl.Status() != session.StatusConnected {
		return ""
	}
	return ctrl.DisplayIdentity()
}

// writeJSON writes a JSON response with the given status code.
func (g *Gateway) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Debug("failed to encode response", "error", err)
	}
}
