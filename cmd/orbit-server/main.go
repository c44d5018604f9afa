package main

import "github.com/oshokin/golden-orbit/cmd/orbit-server/cmd"

func main() {
	cmd.Execute()
}
