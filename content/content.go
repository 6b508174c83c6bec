// Package content defines the council chat message format.
//
// Structure: { v: 1, text?: string, mentions?: [], event?: {} }
// User messages carry text and optional mentions; system messages carry an
// event describing a mission verdict.
package content

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrInvalidContent = errors.New("invalid message content")
	ErrEmptyContent   = errors.New("empty message content")
	ErrContentTooLong = errors.New("message content too long")
)

// Content is the root council message structure.
type Content struct {
	V int `json:"v"`
	// Text with the sender's words
	Text string `json:"text,omitempty"`
	// User mentions inside the text
	Mentions []Mention `json:"mentions,omitempty"`
	// Mission event, present only on system messages
	Event *Event `json:"event,omitempty"`
}

// Mention marks a member referenced in the text. Offsets are grapheme
// indexes, not byte offsets, so emoji never shift a mention.
type Mention struct {
	UserID string `json:"userId"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// Event describes a mission lifecycle announcement posted by the system.
type Event struct {
	// Kind: "mission_submitted", "mission_completed", "mission_failed"
	Kind        string `json:"kind"`
	UserName    string `json:"userName"`
	MissionName string `json:"missionName"`
	Points      int    `json:"points,omitempty"`
}

// NewText builds a plain user message.
func NewText(text string) *Content {
	return &Content{V: 1, Text: text}
}

// NewEvent builds a system announcement.
func NewEvent(kind, userName, missionName string, points int) *Content {
	return &Content{V: 1, Event: &Event{
		Kind:        kind,
		UserName:    userName,
		MissionName: missionName,
		Points:      points,
	}}
}

// Parse decodes raw bytes into a Content. Bytes that are not valid JSON
// are treated as legacy plain text.
func Parse(raw []byte) (*Content, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyContent
	}

	var c Content
	if err := json.Unmarshal(raw, &c); err != nil {
		return &Content{V: 1, Text: string(raw)}, nil
	}
	if c.V != 1 {
		return nil, ErrInvalidContent
	}
	return &c, nil
}

// Marshal encodes the content for storage and transport.
func (c *Content) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Validate normalizes and checks a user message before it enters the
// council. Text is trimmed and truncated to maxGraphemes; mentions whose
// range falls outside the surviving text are dropped.
func (c *Content) Validate(maxGraphemes int) error {
	if c.V != 1 {
		return ErrInvalidContent
	}
	if c.Event != nil {
		// System events are server-built, clients cannot submit them.
		return ErrInvalidContent
	}

	c.Text = strings.TrimSpace(c.Text)
	if c.Text == "" {
		return ErrEmptyContent
	}

	g := NewGraphemes(c.Text)
	if g.Length() > maxGraphemes {
		c.Text = g.Slice(0, maxGraphemes)
	}

	length := GraphemeLength(c.Text)
	valid := c.Mentions[:0]
	for _, m := range c.Mentions {
		if m.Start >= 0 && m.Start < m.End && m.End <= length && m.UserID != "" {
			valid = append(valid, m)
		}
	}
	if len(valid) == 0 {
		c.Mentions = nil
	} else {
		c.Mentions = valid
	}
	return nil
}
