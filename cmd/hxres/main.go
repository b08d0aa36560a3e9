package main

import "github.com/pthm/hxres/internal/cli"

func main() {
	cli.Execute()
}
