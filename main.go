package main

import (
	"goscript/cmd"
)

func main() {
	cmd.Execute()
}
