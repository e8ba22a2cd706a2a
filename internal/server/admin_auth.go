package server

import (
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const adminCookieName = "admin_session"

var errBadPassword = errors.New("invalid credentials")

// adminSessions holds password-login sessions for the admin views. With no
// password hash configured every admin player session is accepted.
type adminSessions struct {
	hash []byte

	mu  sync.Mutex
	ids map[string]string // cookie value -> admin email
}

func newAdminSessions(hash string) *adminSessions {
	a := &adminSessions{ids: make(map[string]string)}
	if hash != "" {
		a.hash = []byte(hash)
	}
	return a
}

func (a *adminSessions) passwordRequired() bool { return a.hash != nil }

func (a *adminSessions) login(email, password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return "", errBadPassword
	}
	id := uuid.NewString()
	a.mu.Lock()
	a.ids[id] = email
	a.mu.Unlock()
	return id, nil
}

func (a *adminSessions) logout(id string) {
	a.mu.Lock()
	delete(a.ids, id)
	a.mu.Unlock()
}

// valid reports whether r carries an admin cookie issued to email.
func (a *adminSessions) valid(r *http.Request, email string) bool {
	if !a.passwordRequired() {
		return true
	}
	cookie, err := r.Cookie(adminCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ids[cookie.Value] == email
}
