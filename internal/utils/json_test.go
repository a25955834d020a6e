package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type intentShape struct {
	Action   string  `json:"action"`
	TaskID   *string `json:"taskId"`
	Content  *string `json:"content"`
	DateText *string `json:"dateText"`
}

func TestExtractAndParseJSON(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantAction string
		wantDate   string
	}{
		{
			name:       "plain object",
			input:      `{"action":"update","taskId":"be4bc269","content":null,"dateText":"明日"}`,
			wantAction: "update",
			wantDate:   "明日",
		},
		{
			name:       "markdown fence",
			input:      "```json\n{\"action\":\"list\",\"taskId\":null,\"content\":null,\"dateText\":null}\n```",
			wantAction: "list",
		},
		{
			name:       "trailing prose",
			input:      `{"action":"help"} 以上です。`,
			wantAction: "help",
		},
		{
			name:       "leading prose",
			input:      `結果: {"action":"add","dateText":"3日後"}`,
			wantAction: "add",
			wantDate:   "3日後",
		},
		{
			name:       "trailing comma",
			input:      `{"action":"delete","taskId":"be4bc269",}`,
			wantAction: "delete",
		},
		{
			name:       "single quotes",
			input:      `{'action': 'today', 'dateText': '今日'}`,
			wantAction: "today",
			wantDate:   "今日",
		},
		{
			name:       "missing comma between lines",
			input:      "{\"action\":\"add\"\n\"dateText\":\"月末\"}",
			wantAction: "add",
			wantDate:   "月末",
		},
		{
			name:       "raw newline inside string",
			input:      "{\"action\":\"edit\",\"content\":\"line1\nline2\"}",
			wantAction: "edit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractAndParseJSON[intentShape](tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAction, got.Action)
			if tt.wantDate != "" {
				require.NotNil(t, got.DateText)
				assert.Equal(t, tt.wantDate, *got.DateText)
			}
		})
	}
}

func TestExtractAndParseJSON_NullFields(t *testing.T) {
	got, err := ExtractAndParseJSON[intentShape](`{"action":"list","taskId":null,"content":null,"dateText":null}`)
	require.NoError(t, err)
	assert.Nil(t, got.TaskID)
	assert.Nil(t, got.Content)
	assert.Nil(t, got.DateText)
}

func TestExtractAndParseJSON_Errors(t *testing.T) {
	for _, input := range []string{"", "   ", "no json here", "```\n```", `{"action": }`} {
		t.Run(input, func(t *testing.T) {
			_, err := ExtractAndParseJSON[intentShape](input)
			assert.Error(t, err)
		})
	}
}
