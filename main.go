package main

import "github.com/theirongolddev/claudit/cmd"

func main() {
	cmd.Execute()
}
