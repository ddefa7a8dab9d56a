package main

import "github.com/custodianhq/custos/cmd"

func main() {
	cmd.Execute()
}
