package main

import "reddit-client/internal/cmd"

func main() {
	cmd.Main()
}
