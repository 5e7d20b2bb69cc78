package main

import "github.com/confsync-project/confsync/internal/cli"

func main() {
	cli.Execute()
}
