package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/RavinduThilinaka/pdf-conventor/internal/version"
)

func main() {
	root := newRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version.Get().Version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
