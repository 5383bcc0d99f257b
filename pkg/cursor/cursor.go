package cursor

import "time"

// Cursor is the resumable position of an incremental poll.
//
// The zero token means the stream has not been polled yet. A Cursor is not
// safe for concurrent polls; one owner drives it.
type Cursor struct {
	Key       string    `json:"key"`
	Token     string    `json:"token,omitempty"`
	Polls     int       `json:"polls"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// New returns an unstarted cursor for the stream identified by key.
func New(key Key) *Cursor {
	return &Cursor{Key: key.String()}
}

// Started reports whether a poll has already returned a token.
func (c *Cursor) Started() bool {
	return c.Token != ""
}

// Advance records the token to resume from on the next poll.
func (c *Cursor) Advance(token string) {
	c.Token = token
	c.Polls++
	c.UpdatedAt = time.Now().UTC()
}

// Reset rewinds the cursor to the unstarted state.
func (c *Cursor) Reset() {
	c.Token = ""
	c.Polls = 0
	c.UpdatedAt = time.Time{}
}
