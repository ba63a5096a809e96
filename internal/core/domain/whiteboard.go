package domain

import (
	"encoding/json"
	"time"
)

type ObjectType string

const (
	ObjectPath  ObjectType = "path"
	ObjectShape ObjectType = "shape"
	ObjectText  ObjectType = "text"
	ObjectImage ObjectType = "image"
)

// WhiteboardObject carries an opaque payload interpreted by the drawing
// surface. Updates replace the payload of an existing identifier; the rest of
// the record is immutable after creation.
type WhiteboardObject struct {
	ID        ObjectID        `json:"id"`
	Type      ObjectType      `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatorID ParticipantID   `json:"creatorId"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ImagePayload is the decoded shape of an ObjectImage payload, used only for
// validation of dimensions and MIME type.
type ImagePayload struct {
	MimeType string `json:"mimeType"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Data     string `json:"data"`
}

func ValidObjectType(t ObjectType) bool {
	switch t {
	case ObjectPath, ObjectShape, ObjectText, ObjectImage:
		return true
	}
	return false
}
