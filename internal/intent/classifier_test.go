package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/hrism/discord-chatwork-task-bot/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockChatModel implements model.BaseChatModel for testing.
type mockChatModel struct {
	response string
	err      error
	received []*schema.Message
}

func (m *mockChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.received = input
	if m.err != nil {
		return nil, m.err
	}
	return &schema.Message{Role: schema.Assistant, Content: m.response}, nil
}

func (m *mockChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, nil
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     Action
		taskID   string
		content  string
		dateText string
	}{
		{
			name:     "edit with url",
			response: `{"action":"edit","taskId":"be4bc269","content":"楽天CSV対応 https://example.com","dateText":null}`,
			want:     ActionEdit,
			taskID:   "be4bc269",
			content:  "楽天CSV対応 https://example.com",
		},
		{
			name:     "update deadline",
			response: `{"action":"update","taskId":"be4bc269","content":null,"dateText":"明日"}`,
			want:     ActionUpdate,
			taskID:   "be4bc269",
			dateText: "明日",
		},
		{
			name:     "add in fenced block",
			response: "```json\n{\"action\":\"add\",\"taskId\":null,\"content\":\"レポート提出\",\"dateText\":\"明日\"}\n```",
			want:     ActionAdd,
			content:  "レポート提出",
			dateText: "明日",
		},
		{
			name:     "upper case action",
			response: `{"action":"LIST","taskId":null,"content":null,"dateText":null}`,
			want:     ActionList,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockChatModel{response: tt.response}
			c := NewClassifier(m, nil)

			got, err := c.Classify(context.Background(), "message")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Action)
			assert.Equal(t, tt.taskID, StringOr(got.TaskID, ""))
			assert.Equal(t, tt.content, StringOr(got.Content, ""))
			assert.Equal(t, tt.dateText, StringOr(got.DateText, ""))
		})
	}
}

func TestClassify_SendsSystemPromptAndMessage(t *testing.T) {
	m := &mockChatModel{response: `{"action":"help"}`}
	c := NewClassifier(m, nil)

	_, err := c.Classify(context.Background(), "ヘルプ見せて")
	require.NoError(t, err)
	require.Len(t, m.received, 2)
	assert.Equal(t, schema.System, m.received[0].Role)
	assert.Contains(t, m.received[0].Content, `"update": タスクの期限を変更`)
	assert.Equal(t, schema.User, m.received[1].Role)
	assert.Equal(t, "ヘルプ見せて", m.received[1].Content)
}

func TestClassify_Errors(t *testing.T) {
	tests := []struct {
		name    string
		model   *mockChatModel
		wantErr error
	}{
		{
			name:  "model failure",
			model: &mockChatModel{err: errors.New("rate limited")},
		},
		{
			name:  "not json",
			model: &mockChatModel{response: "タスクを追加します"},
		},
		{
			name:    "unknown action",
			model:   &mockChatModel{response: `{"action":"archive"}`},
			wantErr: ErrUnknownAction,
		},
		{
			name:    "delete without id",
			model:   &mockChatModel{response: `{"action":"delete","taskId":null}`},
			wantErr: ErrMissingTaskID,
		},
		{
			name:    "complete with malformed id",
			model:   &mockChatModel{response: `{"action":"complete","taskId":"xyz"}`},
			wantErr: ErrMissingTaskID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(tt.model, nil)
			got, err := c.Classify(context.Background(), "message")
			require.Error(t, err)
			assert.Nil(t, got)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNewFromConfig_PropagatesFactoryError(t *testing.T) {
	_, err := NewFromConfig(context.Background(), llm.Config{Provider: llm.ProviderOpenAI}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestActionHelpers(t *testing.T) {
	assert.True(t, ActionUpdate.NeedsTask())
	assert.False(t, ActionAdd.NeedsTask())
	assert.True(t, ActionToday.Valid())
	assert.False(t, Action("archive").Valid())

	blank := "  "
	assert.Equal(t, "def", StringOr(nil, "def"))
	assert.Equal(t, "def", StringOr(&blank, "def"))
}
