package main

import "github.com/Yates-Labs/quarry/cmd"

func main() {
	cmd.Execute()
}
