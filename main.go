package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/qi-lang/qi/cli"
	"github.com/qi-lang/qi/log"

	_ "github.com/qi-lang/qi/reader" // registers core.ParseProgram
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		log.Error(
			"run failed",
			slog.Any("error", err),
		) // slog automatically uses LogValue()
		os.Exit(1)
	}
}
