package main

import "github.com/talkincode/slopeselector/cmd/slopeselector/commands"

func main() {
	commands.Execute()
}
