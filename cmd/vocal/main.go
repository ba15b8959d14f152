package main

import "vocal-assistant/cmd/vocal/cmd"

func main() {
	cmd.Execute()
}
