package main

import "github.com/oshokin/room-control/cmd/room-processor/cmd"

func main() {
	cmd.Execute()
}
