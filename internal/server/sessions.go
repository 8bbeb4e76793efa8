package server

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ukaji3/exselect-go/pkg/exselect"
	"github.com/ukaji3/exselect-go/pkg/exselect/widget"
)

// session is one mounted widget. mu serializes every controller call.
type session struct {
	mu      sync.Mutex
	email   string
	expires time.Time
	ctrl    *widget.Controller
}

// registry maps session IDs to mounted widgets and remembers logged-out
// session IDs until their tokens expire.
type registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	revoked  map[string]time.Time
	opts     exselect.Options
	logger   logrus.FieldLogger
}

func newRegistry(opts exselect.Options, logger logrus.FieldLogger) *registry {
	return &registry{
		sessions: make(map[string]*session),
		revoked:  make(map[string]time.Time),
		opts:     opts,
		logger:   logger,
	}
}

// get returns the widget for id, mounting one if needed. Expired sessions
// are swept on the way.
func (r *registry) get(id, email string, expires, now time.Time) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, s := range r.sessions {
		if key != id && !s.expires.After(now) {
			delete(r.sessions, key)
			go s.teardown()
		}
	}
	for key, expires := range r.revoked {
		if !expires.After(now) {
			delete(r.revoked, key)
		}
	}

	s, ok := r.sessions[id]
	if !ok {
		s = &session{
			email:   email,
			expires: expires,
			ctrl:    widget.New(r.opts, r.logger.WithField("session", id)),
		}
		r.sessions[id] = s
		r.logger.WithFields(logrus.Fields{"session": id, "email": email}).Debug("mounted widget")
	}
	return s
}

// revoke unmounts the widget for id and rejects the session from now on.
// expires is when the session's token stops being valid anyway.
func (r *registry) revoke(id string, expires time.Time) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.revoked[id] = expires
	r.mu.Unlock()

	if ok {
		s.teardown()
	}
}

func (r *registry) isRevoked(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[id]
	return ok
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (s *session) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Teardown()
}
