package main

import (
	"github.com/nexuscore/negotiator/cmd/negotiator/cmd"
)

func main() {
	cmd.Execute()
}
