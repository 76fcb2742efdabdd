package app

import (
	"fmt"
	"io"
	"strings"
)

// Command はmeetdeskのサブコマンド。
type Command string

const (
	// CommandServe は会議APIを提供する。
	CommandServe Command = "serve"
	// CommandWorker は期限切れの閲覧者Identityを定期削除する。
	CommandWorker Command = "worker"
	// CommandMigrate はviewer_identitiesのマイグレーションを適用する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中のAPIの/healthを確認する。
	// distrolessイメージにはcurlが無いため、Dockerのヘルスチェックから使う。
	CommandHealthcheck Command = "healthcheck"
	// CommandHelp は使い方を表示する。設定の読み込みは行わない。
	CommandHelp Command = "help"
)

// commands はUsageの表示順を兼ねる。
var commands = []struct {
	cmd     Command
	summary string
}{
	{CommandServe, "会議APIサーバーを起動する（既定）"},
	{CommandWorker, "期限切れの閲覧者Identityを定期的に削除する"},
	{CommandMigrate, "データベースマイグレーションを適用する"},
	{CommandHealthcheck, "SERVER_PORTで起動中のAPIのヘルスチェックを行う"},
	{CommandHelp, "このヘルプを表示する"},
}

// ParseCommand は先頭の引数からサブコマンドを決める。
// 引数が無い場合と未知の値はCommandServeとして扱う。-h/--helpはCommandHelp。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}
	switch args[0] {
	case "-h", "--help":
		return CommandHelp
	}
	for _, c := range commands {
		if string(c.cmd) == args[0] {
			return c.cmd
		}
	}
	return CommandServe
}

// WriteUsage はサブコマンドの一覧をwに書き出す。
func WriteUsage(w io.Writer) error {
	var b strings.Builder
	b.WriteString("Usage: meetdesk [command]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "  %-12s %s\n", c.cmd, c.summary)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
