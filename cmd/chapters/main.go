// Package main provides the chapters command-line tool.
package main

import "github.com/listenupapp/chapter-timeline/internal/cli"

func main() {
	cli.Main()
}
