//go:build !(tinygo && bootdebug)

package app

import "github.com/messerjon/TetrisClock/hal"

func bootDiagSetStep(string) {}

func bootDiagStart(hal.HAL) {}
