package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	checkcmder "github.com/papercomputeco/intake/cmd/intake/check"
	runcmder "github.com/papercomputeco/intake/cmd/intake/run"
	stagescmder "github.com/papercomputeco/intake/cmd/intake/stages"
	"github.com/papercomputeco/intake/pkg/completion"
)

const (
	exitOK          = 0
	exitError       = 1
	exitRemote      = 5
	exitInterrupted = 130
)

const rootLongDesc string = `intake walks a patient through a conversational intake with a chat
completion model and produces intake notes, a hypothesis report, a
clinical evaluation and referrals as timestamped text files.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "intake",
		Short:        "Conversational patient intake assistant",
		Long:         rootLongDesc,
		SilenceUsage: true,
	}

	cmd.AddCommand(runcmder.NewRunCmd())
	cmd.AddCommand(checkcmder.NewCheckCmd())
	cmd.AddCommand(stagescmder.NewStagesCmd())

	return cmd
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, context.Canceled) {
		return exitInterrupted
	}
	var remote *completion.RemoteError
	if errors.As(err, &remote) {
		return exitRemote
	}
	return exitError
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	os.Exit(exitCode(err))
}
