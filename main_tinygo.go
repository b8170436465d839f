//go:build tinygo

package main

import (
	"github.com/messerjon/TetrisClock/app"
	"github.com/messerjon/TetrisClock/hal"
)

func main() {
	app.Run(hal.New())
}
