package cli

import (
	"path/filepath"
	"testing"

	"github.com/raphaelgruber/redactchat/internal/models"
	"github.com/raphaelgruber/redactchat/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setChatFlags(t *testing.T, prevPath string, newConversation bool) {
	t.Helper()
	oldPrev, oldNew := previousConversation, chatNewConversation
	previousConversation, chatNewConversation = prevPath, newConversation
	t.Cleanup(func() {
		previousConversation, chatNewConversation = oldPrev, oldNew
	})
}

func savedConversation(t *testing.T, path string) models.Conversation {
	t.Helper()
	var conv models.Conversation
	conv.AppendTurn("earlier", models.Message{Role: models.RoleAssistant, Content: "yes"}, "yes")
	require.NoError(t, store.Save(conv, path))
	return conv
}

func TestLoadPrevious_NewConversationIgnoresFallback(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	savedConversation(t, store.DefaultPath())
	setChatFlags(t, "", true)

	conv, err := loadPrevious()
	require.NoError(t, err)
	assert.Empty(t, conv)
}

func TestLoadPrevious_NewConversationIgnoresExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prev.json")
	savedConversation(t, path)
	setChatFlags(t, path, true)

	conv, err := loadPrevious()
	require.NoError(t, err)
	assert.Empty(t, conv)
}

func TestLoadPrevious_ExplicitPathMustExist(t *testing.T) {
	setChatFlags(t, filepath.Join(t.TempDir(), "nope.json"), false)

	_, err := loadPrevious()
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoadPrevious_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prev.json")
	want := savedConversation(t, path)
	setChatFlags(t, path, false)

	conv, err := loadPrevious()
	require.NoError(t, err)
	assert.Equal(t, want, conv)
}

func TestLoadPrevious_FallbackMissingIsEmpty(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	setChatFlags(t, "", false)

	conv, err := loadPrevious()
	require.NoError(t, err)
	assert.Empty(t, conv)
}
