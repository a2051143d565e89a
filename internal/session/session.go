// Package session persists the server-side login records that
// cross-check every token presented by a caller.
package session

// Record is the server-side snapshot of a logged-in user. Its existence
// under the user's key is the authoritative "currently logged in" signal;
// a token whose record is gone does not authenticate.
type Record struct {
	UserID      string   `json:"userId"`
	UserName    string   `json:"userName"`
	Email       string   `json:"email,omitempty"`
	Authorities []string `json:"authorities,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
}
