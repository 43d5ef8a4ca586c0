package main

import "github.com/austiecodes/vera/internal/commands"

func main() {
	commands.Execute()
}
