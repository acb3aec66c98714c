// Package session holds the state of a logged-in user. A Session is created
// by login, passed explicitly to whatever needs it and dropped on logout.
package session

import "github.com/dmitrijs2005/evorun/internal/client/models"

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Session struct {
	Email string
	// Token is empty for offline sessions.
	Token   string
	Profile *models.Profile
	Mode    Mode
}

func NewOnline(email, token string, profile *models.Profile) *Session {
	return &Session{Email: email, Token: token, Profile: profile, Mode: ModeOnline}
}

func NewOffline(email string, profile *models.Profile) *Session {
	return &Session{Email: email, Profile: profile, Mode: ModeOffline}
}

// CanSync reports whether the session may talk to the server.
func (s *Session) CanSync() bool {
	return s != nil && s.Mode == ModeOnline && s.Token != "" && s.Email != ""
}

// Clear drops the token and the cached profile.
func (s *Session) Clear() {
	if s == nil {
		return
	}
	s.Token = ""
	s.Profile = nil
	s.Mode = ModeOffline
}
