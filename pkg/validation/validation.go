package validation

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"classlink/internal/core/domain"
)

var (
	// RoomIDRegex validates room identifier format
	RoomIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// ParticipantIDRegex validates participant identifier format
	ParticipantIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// Limits carries the configured validation ceilings. Built once from the
// configuration and handed to the controller.
type Limits struct {
	MaxMessageLength      int
	MaxPollOptions        int
	MaxWhiteboardObjects  int
	MaxObjectBytes        int
	MaxImageWidth         int
	MaxImageHeight        int
	AllowedImageMimeTypes []string
}

// ValidateRoomID validates room identifier
func ValidateRoomID(roomID string) error {
	if roomID == "" {
		return fmt.Errorf("room ID is required")
	}
	if len(roomID) > 100 {
		return fmt.Errorf("room ID is too long (max 100 characters)")
	}
	if !RoomIDRegex.MatchString(roomID) {
		return fmt.Errorf("invalid room ID format")
	}
	return nil
}

// ValidateParticipantID validates participant identifier
func ValidateParticipantID(id string) error {
	if id == "" {
		return fmt.Errorf("participant ID is required")
	}
	if len(id) > 100 {
		return fmt.Errorf("participant ID is too long (max 100 characters)")
	}
	if !ParticipantIDRegex.MatchString(id) {
		return fmt.Errorf("invalid participant ID format")
	}
	return nil
}

// ValidateDisplayName validates a participant display name
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("display name is required")
	}
	if utf8.RuneCountInString(name) > 50 {
		return fmt.Errorf("display name is too long (max 50 characters)")
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("display name contains invalid characters")
	}
	return nil
}

// ValidateRole validates a session role
func ValidateRole(role string) error {
	if !domain.ValidRole(domain.Role(role)) {
		return fmt.Errorf("invalid role (must be host, co-host, participant, or observer)")
	}
	return nil
}

// ValidateCoordinatorURL validates the session coordinator endpoint
func ValidateCoordinatorURL(urlStr string) error {
	if urlStr == "" {
		return fmt.Errorf("coordinator URL is required")
	}
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid coordinator URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("invalid coordinator URL scheme (must be ws or wss)")
	}
	if u.Host == "" {
		return fmt.Errorf("coordinator URL must have a host")
	}
	return nil
}

// ValidateChatMessage checks a locally authored chat message against the
// configured ceilings.
func (l Limits) ValidateChatMessage(content string) error {
	if strings.TrimSpace(content) == "" {
		return domain.ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > l.MaxMessageLength {
		return domain.ErrMessageTooLong
	}
	return nil
}

// ValidatePollInput checks a poll creation request before it is sent.
func (l Limits) ValidatePollInput(question string, options []string) error {
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("poll question is required")
	}
	if len(options) < 2 || len(options) > l.MaxPollOptions {
		return domain.ErrTooManyOptions
	}
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("poll option text is required")
		}
		if seen[opt] {
			return fmt.Errorf("duplicate poll option %q", opt)
		}
		seen[opt] = true
	}
	return nil
}

// ValidateWhiteboardObject checks payload size plus, for images, dimensions
// and MIME type. boardSize is the current object count on the whiteboard;
// isNew indicates the object identifier is not already present.
func (l Limits) ValidateWhiteboardObject(obj domain.WhiteboardObject, boardSize int, isNew bool) error {
	if !domain.ValidObjectType(obj.Type) {
		return fmt.Errorf("invalid whiteboard object type %q", obj.Type)
	}
	if isNew && boardSize >= l.MaxWhiteboardObjects {
		return domain.ErrWhiteboardFull
	}
	if len(obj.Payload) > l.MaxObjectBytes {
		return domain.ErrObjectTooLarge
	}

	if obj.Type != domain.ObjectImage {
		return nil
	}

	var img domain.ImagePayload
	if err := json.Unmarshal(obj.Payload, &img); err != nil {
		return domain.ErrBadImagePayload
	}
	if img.Width <= 0 || img.Height <= 0 || img.Width > l.MaxImageWidth || img.Height > l.MaxImageHeight {
		return domain.ErrBadImagePayload
	}
	for _, mime := range l.AllowedImageMimeTypes {
		if img.MimeType == mime {
			return nil
		}
	}
	return domain.ErrBadImagePayload
}
