package main

import "github.com/oshokin/room-control/cmd/control-central/cmd"

func main() {
	cmd.Execute()
}
