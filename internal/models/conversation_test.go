package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryJSON_TupleShape(t *testing.T) {
	entry := Entry{
		Message:   Message{Role: RoleUser, Content: "hi there"},
		Annotated: "hi there",
	}

	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"role":"user","content":"hi there"},"hi there"]`, string(data))

	var decoded Entry
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, entry, decoded)
}

func TestEntryJSON_RejectsWrongArity(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty array", `[]`},
		{"single element", `[{"role":"user","content":"x"}]`},
		{"three elements", `[{"role":"user","content":"x"},"x","extra"]`},
		{"not an array", `{"role":"user"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Entry
			assert.Error(t, json.Unmarshal([]byte(tt.data), &e))
		})
	}
}

func TestConversationMessages(t *testing.T) {
	var conv Conversation
	assert.Empty(t, conv.Messages())

	conv.AppendTurn("hello", Message{Role: RoleAssistant, Content: "hi!"}, "hi!")

	msgs := conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, Message{Role: RoleUser, Content: "hello"}, msgs[0])
	assert.Equal(t, Message{Role: RoleAssistant, Content: "hi!"}, msgs[1])
}

func TestConversationAppendTurn_KeepsOrder(t *testing.T) {
	var conv Conversation
	conv.AppendTurn("one", Message{Role: RoleAssistant, Content: "reply one"}, "reply one")
	conv.AppendTurn("two", Message{Role: RoleAssistant, Content: "reply two"}, "reply <EMAIL_ADDRESS>")

	require.Len(t, conv, 4)
	assert.Equal(t, "one", conv[0].Message.Content)
	assert.Equal(t, "reply one", conv[1].Message.Content)
	assert.Equal(t, "two", conv[2].Message.Content)
	assert.Equal(t, "reply <EMAIL_ADDRESS>", conv[3].Annotated)
}
