/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package main

import (
	// Embedded zoneinfo so Asia/Tokyo resolves on hosts without tzdata.
	_ "time/tzdata"

	"github.com/hrism/discord-chatwork-task-bot/cmd"
)

func main() {
	cmd.Execute()
}
