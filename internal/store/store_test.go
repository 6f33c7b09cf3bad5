package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/raphaelgruber/redactchat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConversation() models.Conversation {
	var conv models.Conversation
	conv.AppendTurn("my mail is <EMAIL_ADDRESS>",
		models.Message{Role: models.RoleAssistant, Content: "noted"}, "noted")
	conv.AppendTurn("thanks",
		models.Message{Role: models.RoleAssistant, Content: "see evil.example"}, "see <MALICIOUS_URL>")
	return conv
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "previous.json")
	conv := sampleConversation()

	require.NoError(t, Save(conv, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, conv, loaded)
}

func TestSave_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "previous.json")

	require.NoError(t, Save(sampleConversation(), path))
	var short models.Conversation
	short.AppendTurn("hi", models.Message{Role: models.RoleAssistant, Content: "hello"}, "hello")
	require.NoError(t, Save(short, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, short, loaded)
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"a conversation"}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestLoadDefault_MissingIsEmpty(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	conv, err := LoadDefault()
	require.NoError(t, err)
	assert.Empty(t, conv)
}

func TestLoadDefault_ReadsFallbackFile(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	want := sampleConversation()
	require.NoError(t, Save(want, DefaultPath()))

	conv, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, want, conv)
}

func TestAutoSaver_NotDirtyWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "previous.json")
	conv := sampleConversation()

	saver := NewAutoSaver(&conv, path)
	saved, err := saver.Flush()
	require.NoError(t, err)
	assert.False(t, saved)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestAutoSaver_FlushesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "previous.json")
	conv := sampleConversation()

	saver := NewAutoSaver(&conv, path)
	saver.MarkDirty()

	saved, err := saver.Flush()
	require.NoError(t, err)
	assert.True(t, saved)

	// Mutating after the first flush must not produce a second write.
	conv.AppendTurn("late", models.Message{Role: models.RoleAssistant, Content: "late"}, "late")
	saver.MarkDirty()
	saved, err = saver.Flush()
	require.NoError(t, err)
	assert.False(t, saved)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, loaded, 4)
}

func TestAutoSaver_DefaultsPath(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	var conv models.Conversation

	saver := NewAutoSaver(&conv, "")
	assert.Equal(t, DefaultPath(), saver.Path())
}

func TestAutoSaver_ErrorPropagates(t *testing.T) {
	conv := sampleConversation()
	saver := NewAutoSaver(&conv, filepath.Join(t.TempDir(), "missing-dir", "previous.json"))
	saver.MarkDirty()

	saved, err := saver.Flush()
	assert.False(t, saved)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
