package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/hrism/discord-chatwork-task-bot/internal/notify"
	"github.com/hrism/discord-chatwork-task-bot/internal/router"
	"github.com/hrism/discord-chatwork-task-bot/internal/ui"
	"github.com/hrism/discord-chatwork-task-bot/store"
)

// errOut is where PrintError writes. Tests replace it.
var errOut io.Writer = os.Stderr

// errorPanel reports whether PrintError draws a bordered panel. Tests replace it.
var errorPanel = func() bool {
	return !plain && !jsonOutput && ui.IsErrorTerminal()
}

// userMessage maps known failures to the text shown without --verbose.
func userMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		return router.ReplyNotFound
	case errors.Is(err, store.ErrWriteFailure):
		return "タスクファイルの保存に失敗しました。"
	case errors.Is(err, notify.ErrNotConfigured):
		return "Chatwork が設定されていません (chatwork.token と chatwork.roomID を確認してください)。"
	default:
		return "Error: " + err.Error()
	}
}

// PrintError prints a user-friendly message by default. If the --verbose
// flag is set, it prints the full technical error.
func PrintError(userMsg string, technicalErr error) {
	if viper.GetBool("verbose") && technicalErr != nil {
		fmt.Fprintf(errOut, "Error: %v\n", technicalErr)
		return
	}
	if errorPanel() {
		fmt.Fprintln(errOut, ui.RenderErrorPanel("エラー", userMsg))
		return
	}
	fmt.Fprintln(errOut, userMsg)
}

// LogError prints err only in verbose mode. The user already saw a reply.
func LogError(msg string, err error) {
	if !viper.GetBool("verbose") {
		return
	}
	if err != nil {
		fmt.Fprintf(errOut, "[DEBUG] %s: %v\n", msg, err)
		return
	}
	fmt.Fprintf(errOut, "[DEBUG] %s\n", msg)
}
