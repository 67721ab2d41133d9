package stagescmder

import (
	"bytes"
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Stages Command", func() {
	It("lists every stage in run order", func() {
		var out bytes.Buffer
		cmd := NewStagesCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{})
		Expect(cmd.ExecuteContext(context.Background())).To(Succeed())

		printed := out.String()
		order := []string{
			"demographics-structured",
			"demographics-freeform",
			"symptom-intake",
			"notes",
			"diagnosis",
			"clinical",
			"referrals",
			"complete",
		}
		last := -1
		for _, name := range order {
			idx := strings.Index(printed, name)
			Expect(idx).To(BeNumerically(">", last), name)
			last = idx
		}

		Expect(printed).To(ContainSubstring("FINISHED, SUBMIT"))
		Expect(printed).To(ContainSubstring("system_05_referrals.md"))
		Expect(printed).To(ContainSubstring("chat, notes"))
	})
})
