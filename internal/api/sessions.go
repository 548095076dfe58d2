package api

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"vouch/internal/staging"
)

// errUploadTooLarge maps an oversized request body onto the staging quota
// error so both report 413.
var errUploadTooLarge = staging.ErrQuotaExceeded

// sessionGate admits at most one audit per session.
type sessionGate struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func newSessionGate() *sessionGate {
	return &sessionGate{inFlight: make(map[string]struct{})}
}

func (g *sessionGate) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[key]; busy {
		return false
	}
	g.inFlight[key] = struct{}{}
	return true
}

func (g *sessionGate) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, key)
}

// sessionKey prefers the explicit session header and falls back to the
// client address.
func sessionKey(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(sessionHeader)); id != "" {
		return "session:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}
