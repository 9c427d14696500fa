package main

import "github.com/theirongolddev/budgetbot/cmd"

func main() {
	cmd.Execute()
}
