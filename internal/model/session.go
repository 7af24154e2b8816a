// Package model defines the data structures used throughout the application.
package model

import "time"

// User is the slice of the GitHub profile we keep on a session.
// GitHub returns a much larger object — we only hold what the UI shows.
type User struct {
	Login       string `json:"login"`       // GitHub username, e.g. "sakif"
	DisplayName string `json:"displayName"` // "name" field; may equal Login if unset
	AvatarURL   string `json:"avatarUrl"`   // profile picture URL
}

// Session is the server-side record behind the opaque session cookie.
//
// TOKEN CUSTODY:
// AccessToken is the user's delegated GitHub token. It lives ONLY in this
// record — it is attached to outbound GitHub calls and is never included in
// any payload sent to the browser. The JSON tags exist for store
// serialization, not for client responses; the sanitizer redacts the field
// as a second line of defence should a Session ever leak into a payload.
//
// LIFECYCLE:
//   - created empty on the first request that carries no valid cookie
//   - OAuthState set when the login flow starts (single-use CSRF nonce)
//   - AccessToken and User set together at callback success — never one
//     without the other
//   - destroyed on logout or when ExpiresAt passes
type Session struct {
	ID          string    `json:"id"`
	OAuthState  string    `json:"oauthState,omitempty"`
	AccessToken string    `json:"accessToken,omitempty"`
	User        *User     `json:"user,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Authenticated reports whether the OAuth handshake completed for this
// session. Token and user are committed together, so checking the token
// alone is sufficient.
func (s *Session) Authenticated() bool {
	return s != nil && s.AccessToken != ""
}
