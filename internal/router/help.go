package router

// HelpText is the reply to ヘルプ / help.
const HelpText = `
**Discord タスク管理Bot - 使い方**

📝 **タスク登録**
自然言語でタスクを入力してください。
例:
- 明日レポート提出
- 3日後に会議
- 来週月曜に資料作成
- 今週金曜15時に打ち合わせ
- 月末までに請求書

📋 **コマンド**
` + "`リスト`" + ` または ` + "`一覧`" + ` - 全タスクを表示
` + "`今日`" + ` - 今日期限のタスクを表示
` + "`削除 [ID]`" + ` - タスクを削除
` + "`完了 [ID]`" + ` - タスクを完了にする
` + "`[ID]を明日に変更`" + ` - タスクの期限を変更
` + "`ヘルプ`" + ` - このヘルプを表示

🔔 **通知**
- タスク登録時: 即時通知
- 毎朝8時: 今日と3日以内のタスク
- 期限1時間前: 個別タスク通知
`
