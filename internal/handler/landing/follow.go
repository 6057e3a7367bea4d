package landing

import (
	"sync"

	"github.com/jwalitptl/health-navigator/internal/session"
)

// sessionFollower tracks the one session a stream was opened with, across
// refreshes. Events about the identity's other sessions are ignored.
type sessionFollower struct {
	mu sync.Mutex
	id string
}

// apply reports whether ev concerns the followed session and, if so, the
// session the stream should now navigate with.
func (f *sessionFollower) apply(ev session.Event) (*session.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.id == "" || ev.SessionID != f.id {
		return nil, false
	}
	switch ev.Type {
	case session.EventSignedOut:
		f.id = ""
		return nil, true
	case session.EventTokenRefreshed:
		if ev.Session == nil {
			f.id = ""
			return nil, true
		}
		f.id = ev.Session.ID
		return ev.Session, true
	}
	return nil, false
}
