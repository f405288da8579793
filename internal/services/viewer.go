package services

import "bazaar/internal/domain"

// Viewer identifies the browser behind a request: its session id and, when
// logged in, the bearer token and identity bound to it.
type Viewer struct {
	SID   string
	Token string
	User  *domain.User
}

func (v Viewer) LoggedIn() bool { return v.Token != "" && v.User != nil }

func (v Viewer) UserID() string {
	if v.User == nil {
		return ""
	}
	return v.User.ID
}
