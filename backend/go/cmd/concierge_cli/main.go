package main

import "Concierge/backend/go/cmd/concierge_cli/cmd"

func main() {
	cmd.Execute()
}
