package web

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const toastDuration = 2 * time.Minute

// Toast is a one-shot message shown on the next rendered page.
type Toast struct {
	ID        string
	Message   string
	Kind      string
	CreatedAt time.Time
}

type toastStore struct {
	mu     sync.Mutex
	byUser map[string][]Toast
}

func newToastStore() *toastStore {
	return &toastStore{byUser: make(map[string][]Toast)}
}

func (s *toastStore) Add(key string, toast Toast) {
	if key == "" {
		return
	}
	if toast.ID == "" {
		toast.ID = uuid.NewString()
	}
	if toast.CreatedAt.IsZero() {
		toast.CreatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[key] = append(s.byUser[key], toast)
}

// Take removes and returns the unexpired toasts for key.
func (s *toastStore) Take(key string) []Toast {
	if key == "" {
		return nil
	}
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	toasts := s.byUser[key]
	delete(s.byUser, key)
	var active []Toast
	for _, toast := range toasts {
		if now.Sub(toast.CreatedAt) > toastDuration {
			continue
		}
		active = append(active, toast)
	}
	return active
}

func toastKey(r *http.Request) string {
	if user, ok := CurrentUser(r.Context()); ok && strings.TrimSpace(user.Name) != "" {
		return "user:" + strings.TrimSpace(user.Name)
	}
	if id := visitorID(r.Context()); id != "" {
		return "visitor:" + id
	}
	return ""
}

func (s *Server) addToast(r *http.Request, kind, message string) {
	s.toasts.Add(toastKey(r), Toast{Kind: kind, Message: message})
}
