package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
)

// ErrInvalidSignature is returned when X-Line-Signature does not match the body.
var ErrInvalidSignature = errors.New("line: invalid signature")

// Event is the subset of a webhook event used for group id discovery.
type Event struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Source     struct {
		Type    string `json:"type"` // user, group, room
		UserID  string `json:"userId"`
		GroupID string `json:"groupId"`
		RoomID  string `json:"roomId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
}

type webhookBody struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Sign computes the X-Line-Signature value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ParseWebhook verifies the signature and decodes the events.
func ParseWebhook(secret, signature string, body []byte) ([]Event, error) {
	want, err := base64.StdEncoding.DecodeString(signature)
	if err != nil || secret == "" {
		return nil, ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), want) {
		return nil, ErrInvalidSignature
	}
	var wb webhookBody
	if err := json.Unmarshal(body, &wb); err != nil {
		return nil, err
	}
	return wb.Events, nil
}

// GroupIDReply returns the text to answer a text message with: the group id
// inside a group, a hint otherwise. ok is false for events that need no reply.
func GroupIDReply(ev Event) (text string, ok bool) {
	if ev.Type != "message" || ev.Message.Type != "text" || ev.ReplyToken == "" {
		return "", false
	}
	if ev.Source.Type == "group" {
		return "這個群組的 ID 是：\n" + ev.Source.GroupID, true
	}
	return "請將我加入群組中，我可以回覆群組 ID 😄", true
}
