// Command mcpchat is a terminal chat client for an MCP task backend.
package main

import "github.com/diogo/mcpchat/internal/commands"

func main() {
	commands.Execute()
}
