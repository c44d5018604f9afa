package main

import "github.com/oshokin/golden-orbit/cmd/orbit-ctl/cmd"

func main() {
	cmd.Execute()
}
