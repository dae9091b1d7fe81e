package main

import (
	"os"

	"mainprgm/cmd/mainprgm/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
