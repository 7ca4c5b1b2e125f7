package main

import "github.com/jrsteele09/go-crm/internal/cli"

func main() {
	cli.Execute()
}
