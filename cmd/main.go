package main

import (
	cmd "github.com/kerbaras/novelshelf/cmd/novelshelf"
)

func main() {
	cmd.Execute()
}
