// cmd/partyplnr/main.go
package main

import "partyplnr/cmd/partyplnr/cli"

func main() {
	cli.Execute()
}
