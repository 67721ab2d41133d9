package stagescmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/intake/pkg/intake"
)

const stagesLongDesc string = `List the stages of an intake session in run order.

Each row shows the system prompt the stage sends, what ends its
free-text loop and which files it writes.`

const stagesShortDesc string = "List intake session stages"

type stagesCommander struct{}

func NewStagesCmd() *cobra.Command {
	cmder := &stagesCommander{}

	cmd := &cobra.Command{
		Use:   "stages",
		Short: stagesShortDesc,
		Long:  stagesLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	return cmd
}

func (c *stagesCommander) run(_ context.Context, cmd *cobra.Command) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "STAGE", "PROMPT", "ENDS ON", "WRITES")

	for i, s := range intake.Stages() {
		t.Row(
			fmt.Sprintf("%d", i+1),
			s.Stage.String(),
			dash(s.Prompt),
			dash(strings.Join(s.Sentinels, ", ")),
			dash(strings.Join(s.Artifacts, ", ")),
		)
	}

	fmt.Fprintln(cmd.OutOrStdout(), t.String())
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
