//go:build !desktop

package main

import (
	"github.com/itohio/heatgrid/pkg/config"
	"github.com/itohio/heatgrid/pkg/window"
)

// newDesktop is unavailable without the desktop tag; openDisplay reports it.
func newDesktop(*config.Config) (*window.Window, func()) {
	return nil, nil
}
