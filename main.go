package main

import "github.com/chatrelay/chatrelay/cmd"

func main() {
	cmd.Execute()
}
