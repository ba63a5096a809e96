package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"classlink/internal/core/domain"
)

func testLimits() Limits {
	return Limits{
		MaxMessageLength:      100,
		MaxPollOptions:        4,
		MaxWhiteboardObjects:  3,
		MaxObjectBytes:        1024,
		MaxImageWidth:         1920,
		MaxImageHeight:        1080,
		AllowedImageMimeTypes: []string{"image/png", "image/jpeg"},
	}
}

func TestValidateRoomID(t *testing.T) {
	assert.NoError(t, ValidateRoomID("physics-101"))
	assert.NoError(t, ValidateRoomID("room_42"))
	assert.Error(t, ValidateRoomID(""))
	assert.Error(t, ValidateRoomID("has spaces"))
	assert.Error(t, ValidateRoomID(strings.Repeat("x", 101)))
}

func TestValidateDisplayName(t *testing.T) {
	assert.NoError(t, ValidateDisplayName("Ada Lovelace"))
	assert.Error(t, ValidateDisplayName(""))
	assert.Error(t, ValidateDisplayName("   "))
	assert.Error(t, ValidateDisplayName(strings.Repeat("n", 51)))
}

func TestValidateRole(t *testing.T) {
	for _, role := range []string{"host", "co-host", "participant", "observer"} {
		assert.NoError(t, ValidateRole(role), role)
	}
	assert.Error(t, ValidateRole("admin"))
	assert.Error(t, ValidateRole(""))
}

func TestValidateCoordinatorURL(t *testing.T) {
	assert.NoError(t, ValidateCoordinatorURL("ws://localhost:8081/ws"))
	assert.NoError(t, ValidateCoordinatorURL("wss://class.example.com/ws"))
	assert.Error(t, ValidateCoordinatorURL("http://example.com"))
	assert.Error(t, ValidateCoordinatorURL(""))
	assert.Error(t, ValidateCoordinatorURL("wss://"))
}

func TestValidateChatMessage(t *testing.T) {
	l := testLimits()

	assert.NoError(t, l.ValidateChatMessage("hello"))
	assert.ErrorIs(t, l.ValidateChatMessage(""), domain.ErrEmptyMessage)
	assert.ErrorIs(t, l.ValidateChatMessage("  \t "), domain.ErrEmptyMessage)
	assert.ErrorIs(t, l.ValidateChatMessage(strings.Repeat("a", 101)), domain.ErrMessageTooLong)
}

func TestValidatePollInput(t *testing.T) {
	l := testLimits()

	assert.NoError(t, l.ValidatePollInput("favorite element?", []string{"H", "He"}))
	assert.ErrorIs(t, l.ValidatePollInput("q", []string{"only one"}), domain.ErrTooManyOptions)
	assert.ErrorIs(t, l.ValidatePollInput("q", []string{"a", "b", "c", "d", "e"}), domain.ErrTooManyOptions)
	assert.Error(t, l.ValidatePollInput("", []string{"a", "b"}))
	assert.Error(t, l.ValidatePollInput("q", []string{"a", "a"}))
}

func TestValidateWhiteboardObject_SizeAndCap(t *testing.T) {
	l := testLimits()

	small := domain.WhiteboardObject{Type: domain.ObjectPath, Payload: json.RawMessage(`{"points":[1,2]}`)}
	assert.NoError(t, l.ValidateWhiteboardObject(small, 0, true))

	// Board full only rejects new objects; payload replacement still works.
	assert.ErrorIs(t, l.ValidateWhiteboardObject(small, 3, true), domain.ErrWhiteboardFull)
	assert.NoError(t, l.ValidateWhiteboardObject(small, 3, false))

	big := domain.WhiteboardObject{Type: domain.ObjectShape, Payload: json.RawMessage(`{"fill":"` + strings.Repeat("x", 2000) + `"}`)}
	assert.ErrorIs(t, l.ValidateWhiteboardObject(big, 0, true), domain.ErrObjectTooLarge)
}

func TestValidateWhiteboardObject_Image(t *testing.T) {
	l := testLimits()

	ok := domain.WhiteboardObject{
		Type:    domain.ObjectImage,
		Payload: json.RawMessage(`{"mimeType":"image/png","width":800,"height":600,"data":"..."}`),
	}
	assert.NoError(t, l.ValidateWhiteboardObject(ok, 0, true))

	badMime := domain.WhiteboardObject{
		Type:    domain.ObjectImage,
		Payload: json.RawMessage(`{"mimeType":"image/tiff","width":800,"height":600}`),
	}
	assert.ErrorIs(t, l.ValidateWhiteboardObject(badMime, 0, true), domain.ErrBadImagePayload)

	tooWide := domain.WhiteboardObject{
		Type:    domain.ObjectImage,
		Payload: json.RawMessage(`{"mimeType":"image/png","width":5000,"height":600}`),
	}
	assert.ErrorIs(t, l.ValidateWhiteboardObject(tooWide, 0, true), domain.ErrBadImagePayload)

	notJSON := domain.WhiteboardObject{
		Type:    domain.ObjectImage,
		Payload: json.RawMessage(`"just a string"`),
	}
	assert.ErrorIs(t, l.ValidateWhiteboardObject(notJSON, 0, true), domain.ErrBadImagePayload)
}
