package main

import "github.com/saadjs/habitdash/cmd/habitdash"

func main() {
	habitdash.Execute()
}
