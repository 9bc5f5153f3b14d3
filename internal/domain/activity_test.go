package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityTypeIconAndColor(t *testing.T) {
	cases := []struct {
		kind  ActivityType
		icon  string
		color string
	}{
		{ActivityCreated, "plus-circle", "green"},
		{ActivityUpdated, "pencil", "blue"},
		{ActivityDeleted, "trash", "red"},
		{ActivityCommented, "comment", "purple"},
		{ActivityStatusChanged, "refresh", "orange"},
		{ActivityPriorityChanged, "flag", "yellow"},
		{ActivityAssigned, "user-plus", "indigo"},
		{ActivityType("bogus"), "circle", "gray"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.icon, tc.kind.Icon(), string(tc.kind))
		assert.Equal(t, tc.color, tc.kind.Color(), string(tc.kind))
	}
}

func TestStatusChangeDetails(t *testing.T) {
	props := StatusChangeProperties{Old: TicketStatusOpen, New: TicketStatusClosed}
	assert.Equal(t, map[string]string{
		"old_status": "Open",
		"new_status": "Closed",
	}, props.Details())
}

func TestPriorityChangeDetails(t *testing.T) {
	props := PriorityChangeProperties{Old: TicketPriorityLow, New: TicketPriorityCritical}
	assert.Equal(t, map[string]string{
		"old_priority": "Low",
		"new_priority": "Critical",
	}, props.Details())
}

func TestUpdateDetailsLabelsFields(t *testing.T) {
	props := UpdateProperties{Changes: map[string]FieldChange{
		"status":     {Old: "open", New: "closed"},
		"created_at": {Old: "a", New: "b"},
	}}
	details := props.Details()
	assert.Equal(t, "Status", details["status"].Field)
	assert.Equal(t, "Created at", details["created_at"].Field)
	assert.Equal(t, "open", details["status"].Old)
	assert.Equal(t, "closed", details["status"].New)
}

func TestEncodeDecodeProperties(t *testing.T) {
	raw, err := EncodeProperties(StatusChangeProperties{Old: TicketStatusOpen, New: TicketStatusClosed})
	require.NoError(t, err)

	decoded, err := DecodeProperties(ActivityStatusChanged, raw)
	require.NoError(t, err)
	assert.Equal(t, StatusChangeProperties{Old: TicketStatusOpen, New: TicketStatusClosed}, decoded)
}

func TestEncodePropertiesNil(t *testing.T) {
	raw, err := EncodeProperties(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	decoded, err := DecodeProperties(ActivityCreated, nil)
	require.NoError(t, err)
	assert.Nil(t, decoded)

	decoded, err = DecodeProperties(ActivityCreated, []byte("null"))
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodePropertiesUnknownTypeIsNil(t *testing.T) {
	decoded, err := DecodeProperties(ActivityType("bogus"), []byte(`{"x":1}`))
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestFieldLabel(t *testing.T) {
	assert.Equal(t, "Status", FieldLabel("status"))
	assert.Equal(t, "Created at", FieldLabel("created_at"))
	assert.Equal(t, "", FieldLabel(""))
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, (&User{Email: "root@admin.example.com"}).IsAdmin())
	assert.True(t, (&User{Email: "ROOT@ADMIN.example.com"}).IsAdmin())
	assert.False(t, (&User{Email: "ada@example.com"}).IsAdmin())
	var nobody *User
	assert.False(t, nobody.IsAdmin())
}
