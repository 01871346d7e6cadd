package main

import "unimeal-backend-go/internal/cli"

func main() {
	cli.Execute()
}
