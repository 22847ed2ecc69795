package security

import "time"

const (
	EventAccountLocked = "account_locked"
	EventRefreshReuse  = "refresh_reuse"
	EventRateLimited   = "rate_limited"
)

// Event is one security observation pushed to connected dashboards. The
// feed is ephemeral; nothing here is persisted.
type Event struct {
	Type       string    `json:"type"`
	At         time.Time `json:"at"`
	Username   string    `json:"username,omitempty"`
	ClientAddr string    `json:"client_addr,omitempty"`
	UserID     int64     `json:"user_id,omitempty"`
	SessionID  string    `json:"session_id,omitempty"`
	Identity   string    `json:"identity,omitempty"`
	Class      string    `json:"class,omitempty"`
}

// Notifier adapts the hub to the callback interfaces the auth service and
// the rate limiter expect. Broadcast never blocks, slow readers lose
// events instead of stalling a login.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) AccountLocked(username, clientAddr string) {
	n.hub.Broadcast(Event{
		Type:       EventAccountLocked,
		At:         time.Now().UTC(),
		Username:   username,
		ClientAddr: clientAddr,
	})
}

func (n *Notifier) RefreshReuse(userID int64, sessionID string) {
	n.hub.Broadcast(Event{
		Type:      EventRefreshReuse,
		At:        time.Now().UTC(),
		UserID:    userID,
		SessionID: sessionID,
	})
}

func (n *Notifier) RateLimited(identity, class string) {
	n.hub.Broadcast(Event{
		Type:     EventRateLimited,
		At:       time.Now().UTC(),
		Identity: identity,
		Class:    class,
	})
}
