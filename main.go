package main

import "divmap/cmd"

func main() {
	cmd.Execute()
}
