package main

import "github.com/ensembleops/ensemble/cmd/ensemble/cmd"

func main() {
	cmd.Execute()
}
