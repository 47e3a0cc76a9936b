package notification

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOutboxFixture(t *testing.T) (Sink, *gorm.DB) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(&NotificationEvent{}))

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)

	return NewOutboxSink(gdb, node), gdb
}

func TestPublishWritesOutboxRow(t *testing.T) {
	sink, gdb := newOutboxFixture(t)

	err := sink.Publish(context.Background(), Event{
		RecipientID: 1001,
		Type:        TypeInvitationAccepted,
		ProjectID:   555,
		ActorID:     2002,
	})
	require.NoError(t, err)

	var rows []NotificationEvent
	require.NoError(t, gdb.Find(&rows).Error)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, snowflake.ID(1001), row.RecipientID)
	assert.Equal(t, TypeInvitationAccepted, row.EventType)
	assert.False(t, row.Published)
	assert.NotZero(t, row.ID)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(row.Payload, &payload))
	assert.Equal(t, "555", payload["project_id"])
	assert.Equal(t, "2002", payload["actor_id"])
}

func TestPublishRejectsIncompleteEvents(t *testing.T) {
	sink, gdb := newOutboxFixture(t)

	assert.Error(t, sink.Publish(context.Background(), Event{Type: TypeInvitationAccepted}))
	assert.Error(t, sink.Publish(context.Background(), Event{RecipientID: 1001}))

	var count int64
	require.NoError(t, gdb.Model(&NotificationEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}
