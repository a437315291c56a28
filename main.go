package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/learnify/learnify/cmd"
	"github.com/learnify/learnify/internal/apperrors"
	"github.com/learnify/learnify/internal/ui/theme"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		msg := err.Error()
		if kind := apperrors.KindOf(err); kind != apperrors.KindInternal {
			msg = apperrors.UserMessage(kind) + " (" + msg + ")"
		}
		fmt.Fprintln(os.Stderr, theme.Failure.Render("error:"), msg)
		stop()
		os.Exit(1)
	}
}
