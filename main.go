package main

import (
	"github.com/luma/litecache/cmd"
)

func main() {
	cmd.Execute()
}
