// Command redisd is the server entrypoint.
package main

import (
	"os"

	"redisd/internal/cli"
)

func main() {
	code := cli.Execute(os.Args[1:])
	os.Exit(code)
}
