package main

import "salesync/cmd/client/cmd"

func main() {
	cmd.Execute()
}
