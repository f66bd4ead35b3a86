package mysql

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vocabuddy/progress/internal/catalog"
	"github.com/vocabuddy/progress/internal/models"
)

func TestJSONPath(t *testing.T) {
	assert.Equal(t, `$."words"`, jsonPath([]string{"words"}))
	assert.Equal(t, `$."profile"."achievements"`, jsonPath([]string{"profile", "achievements"}))
}

func TestUpdateFieldsQuery(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	query, args, err := updateFieldsQuery("u-1", map[string]any{
		"profile.selectedLanguages": []string{"en", "de"},
		"currentLanguage":           "de",
	}, now)
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO mirror_documents (user_id,data,updated_at) VALUES (?,?,?) "+
			"ON DUPLICATE KEY UPDATE data = JSON_SET(JSON_MERGE_PATCH(VALUES(data), data), ?, CAST(? AS JSON), ?, CAST(? AS JSON)), "+
			"updated_at = VALUES(updated_at)",
		query)
	require.Len(t, args, 7)
	assert.Equal(t, "u-1", args[0])
	assert.JSONEq(t, `{"currentLanguage":"de","profile":{"selectedLanguages":["en","de"]}}`, args[1].(string))
	assert.Equal(t, now, args[2])
	assert.Equal(t, `$."currentLanguage"`, args[3])
	assert.Equal(t, `"de"`, args[4])
	assert.Equal(t, `$."profile"."selectedLanguages"`, args[5])
	assert.Equal(t, `["en","de"]`, args[6])
}

func TestUpdateFieldsQuery_Empty(t *testing.T) {
	_, _, err := updateFieldsQuery("u-1", nil, time.Now())
	assert.Error(t, err)
}

// TestMirror_RoundTrip runs against a real server when MYSQL_TEST_DSN is set.
func TestMirror_RoundTrip(t *testing.T) {
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if testing.Short() || dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set")
	}
	ctx := context.Background()
	m, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer m.Close()

	userID := "test-" + time.Now().Format("150405.000000")
	require.NoError(t, m.UpdateFields(ctx, userID, map[string]any{
		models.FieldCurrentLanguage: "fr",
	}))
	require.NoError(t, m.WriteDocument(ctx, userID, models.Document{
		SchemaVersion: models.DocumentSchemaVersion,
		Profile:       catalog.DefaultProfile(),
		CurrentLevel:  models.LevelA1,
	}))
	require.NoError(t, m.UpdateFields(ctx, userID, map[string]any{
		models.FieldAchievements: []models.Achievement{},
		models.FieldCurrentLevel: models.LevelC1,
	}))

	doc, err := m.ReadDocument(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, models.LevelC1, doc.CurrentLevel)
	assert.Empty(t, doc.Profile.Achievements)
	assert.Equal(t, catalog.DefaultSelection(), doc.Profile.SelectedLanguages)

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
