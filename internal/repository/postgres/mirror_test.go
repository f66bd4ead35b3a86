package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vocabuddy/progress/internal/catalog"
	"github.com/vocabuddy/progress/internal/models"
)

func TestUpdateFieldsQuery(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	query, args, err := updateFieldsQuery("u-1", map[string]any{
		"profile.achievements": []int{1},
		"currentLevel":         "B1",
	}, now)
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO mirror_documents (user_id,data,updated_at) VALUES ($1,$2,$3) "+
			"ON CONFLICT (user_id) DO UPDATE SET data = "+
			"jsonb_set(jsonb_set((EXCLUDED.data || mirror_documents.data), $4::text[], $5::jsonb, true), $6::text[], $7::jsonb, true), "+
			"updated_at = $8",
		query)
	require.Len(t, args, 8)
	assert.Equal(t, "u-1", args[0])
	assert.JSONEq(t, `{"currentLevel":"B1","profile":{"achievements":[1]}}`, args[1].(string))
	assert.Equal(t, pq.Array([]string{"currentLevel"}), args[3])
	assert.Equal(t, `"B1"`, args[4])
	assert.Equal(t, pq.Array([]string{"profile", "achievements"}), args[5])
	assert.Equal(t, `[1]`, args[6])
	assert.Equal(t, now, args[7])
}

func TestUpdateFieldsQuery_Invalid(t *testing.T) {
	_, _, err := updateFieldsQuery("u-1", map[string]any{}, time.Now())
	assert.Error(t, err)

	_, _, err = updateFieldsQuery("u-1", map[string]any{"profile.": 1}, time.Now())
	assert.Error(t, err)
}

// TestMirror_RoundTrip runs against a real server when POSTGRES_TEST_DSN is set.
func TestMirror_RoundTrip(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if testing.Short() || dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()
	m, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer m.Close()

	userID := "test-" + time.Now().Format("150405.000000")
	doc, err := m.ReadDocument(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, doc)

	require.NoError(t, m.WriteDocument(ctx, userID, models.Document{
		SchemaVersion:   models.DocumentSchemaVersion,
		Profile:         catalog.DefaultProfile(),
		CurrentLanguage: "en",
		CurrentLevel:    models.LevelA1,
	}))
	require.NoError(t, m.UpdateFields(ctx, userID, map[string]any{
		models.FieldCurrentLevel:      models.LevelB2,
		models.FieldSelectedLanguages: []string{"de"},
	}))

	doc, err = m.ReadDocument(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, userID, doc.UserID)
	assert.Equal(t, models.LevelB2, doc.CurrentLevel)
	assert.Equal(t, []string{"de"}, doc.Profile.SelectedLanguages)
	assert.Equal(t, catalog.DefaultDailyWordGoal, doc.Profile.DailyWordGoal)

	// A nested path reaching a document without its parent creates the parent.
	bare := userID + "-bare"
	require.NoError(t, m.UpdateFields(ctx, bare, map[string]any{models.FieldCurrentLanguage: "fr"}))
	require.NoError(t, m.UpdateFields(ctx, bare, map[string]any{models.FieldSelectedLanguages: []string{"fr"}}))
	doc, err = m.ReadDocument(ctx, bare)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "fr", doc.CurrentLanguage)
	assert.Equal(t, []string{"fr"}, doc.Profile.SelectedLanguages)
}
