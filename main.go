package main

import (
	"github.com/diffusor/talkytime/internal/cli"
)

func main() {
	cli.Run()
}
