package main

import (
	"github.com/bankreco/bankreco/cmd/bankreco/cmd"
)

func main() {
	cmd.Execute()
}
