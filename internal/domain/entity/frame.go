package entity

import (
	"encoding/json"
	"time"
)

type FrameKind int

const (
	FrameText FrameKind = iota
	FrameImage
	FrameUnknown
)

// Frame is the normalized form of one inbound live-channel payload. Every
// payload normalizes to exactly one frame; nothing is ever dropped for shape.
type Frame struct {
	Kind    FrameKind
	Message ChatMessage
	// Raw is the original payload, kept for frames that did not parse as a
	// structured message.
	Raw string
}

type wireMessage struct {
	ID      int64        `json:"id"`
	Sender  *Participant `json:"sender"`
	Content *string      `json:"content"`
	SentAt  string       `json:"sentAt"`
}

// NormalizeFrame turns an arbitrary live-channel payload into a renderable
// frame. The backend usually sends {id, sender, content, sentAt} objects, but
// relay quirks can deliver bare strings or unexpected shapes; those are
// wrapped rather than rejected.
func NormalizeFrame(raw []byte) Frame {
	text := string(raw)

	var wire wireMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		// Not a structured message. Still renderable: an image if the raw
		// payload sniffs as one, otherwise an unknown frame shown as text.
		kind := FrameUnknown
		if IsImageContent(text) {
			kind = FrameImage
		}
		return Frame{
			Kind:    kind,
			Message: ChatMessage{Content: text},
			Raw:     text,
		}
	}

	msg := ChatMessage{
		ID:     wire.ID,
		Sender: wire.Sender,
	}
	if wire.Content != nil {
		msg.Content = *wire.Content
	} else {
		// Object without a content field: render the whole payload.
		msg.Content = text
	}
	if wire.SentAt != "" {
		if ts, err := time.Parse(time.RFC3339, wire.SentAt); err == nil {
			msg.SentAt = ts
		}
	}

	kind := FrameText
	if IsImageContent(msg.Content) {
		kind = FrameImage
	}
	return Frame{Kind: kind, Message: msg, Raw: text}
}
