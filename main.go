package main

import "github.com/mocha-chaan/Jobhub-bot/cmd"

func main() {
	cmd.Execute()
}
