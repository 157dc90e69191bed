package main

import "github.com/KaramelBytes/caproi-cli/cmd"

func main() {
	cmd.Execute()
}
