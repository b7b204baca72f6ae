package main

import (
	"os"

	"github.com/Vijaykv5/Intereractive-GD/gdservice"
)

func main() {
	if err := gdservice.Run(); err != nil {
		os.Exit(1)
	}
}
