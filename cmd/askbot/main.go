// askbot runs the Telegram assistant bot and its admin commands.
package main

import (
	"os"

	"github.com/ksteinfeldt/askbot/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
