package main

import "github.com/marshallshelly/forkline/cmd/forkline/commands"

func main() {
	commands.Execute()
}
