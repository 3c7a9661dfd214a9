package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// newDryRunDB opens a gorm session that builds SQL without touching a server,
// using the same naming strategy main configures.
func newDryRunDB(t *testing.T, prefix string) (*gorm.DB, *[]string) {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "test:test@tcp(127.0.0.1:3306)/test?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   prefix,
			SingularTable: true,
		},
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	captured := &[]string{}
	err = db.Callback().Query().After("gorm:query").Register("test:capture_sql", func(tx *gorm.DB) {
		*captured = append(*captured, tx.Statement.SQL.String())
	})
	require.NoError(t, err)
	return db, captured
}

func TestListByUserIDUsesConfiguredTableNames(t *testing.T) {
	db, captured := newDryRunDB(t, "")
	repo := NewChatRepository(db)

	_, err := repo.ListByUserID(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, *captured)

	sql := (*captured)[0]
	require.Contains(t, sql, "JOIN chat_participant ON chat_participant.chat_id = chat.id")
	require.Contains(t, sql, "ORDER BY chat.created_at DESC")
	require.NotContains(t, sql, "chats.")
}

func TestChatTableNamesFollowPrefix(t *testing.T) {
	db, captured := newDryRunDB(t, "dm_")
	repo := NewChatRepository(db)

	_, err := repo.ListByUserID(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, *captured)
	require.Contains(t, (*captured)[0], "JOIN dm_chat_participant ON dm_chat_participant.chat_id = dm_chat.id")

	*captured = (*captured)[:0]
	_, err = repo.FirstBetween(context.Background(), 1, 2)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.True(t, strings.Contains((*captured)[0], "FROM `dm_chat_participant`"))
}
