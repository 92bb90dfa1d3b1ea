package main

import "github.com/shaharia-lab/emailnotify/cmd"

func main() {
	cmd.Execute()
}
