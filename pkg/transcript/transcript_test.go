package transcript_test

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/intake/pkg/transcript"
)

var _ = Describe("Transcript", func() {
	It("renders entries between the chat markers", func() {
		var t transcript.Transcript
		t.Add("PATIENT", "About Me: age (years): 34")
		t.Add("DEMOGRAPHICS", "Thanks.")

		Expect(t.Len()).To(Equal(2))
		Expect(t.ChatLog()).To(Equal(
			"<<BEGIN PATIENT INTAKE CHAT>>\n\n" +
				"PATIENT: About Me: age (years): 34\n\n" +
				"DEMOGRAPHICS: Thanks.\n\n" +
				"<<END PATIENT INTAKE CHAT>>"))
	})

	It("returns a copy of its entries", func() {
		var t transcript.Transcript
		t.Add("PATIENT", "hi")
		entries := t.Entries()
		entries[0].Text = "changed"

		Expect(t.Entries()[0].Text).To(Equal("hi"))
	})
})

var _ = Describe("Formatter", func() {
	It("adds the labeled header", func() {
		f := transcript.NewFormatter("INTAKE")

		Expect(f.Format("short reply")).To(Equal("\n\n\nINTAKE:\n\n    short reply"))
	})

	It("falls back to the default label", func() {
		f := transcript.Formatter{Width: 40, Indent: "  "}

		Expect(f.Format("x")).To(HavePrefix("\n\n\nCHATBOT:\n\n"))
	})

	It("wraps each input line independently", func() {
		f := transcript.Formatter{Width: 20, Indent: "    "}

		out := f.Wrap("first\nsecond")
		Expect(out).To(Equal("    first\n    second"))
	})

	It("keeps blank lines blank", func() {
		f := transcript.NewFormatter("")

		Expect(f.Wrap("a\n\nb")).To(Equal("    a\n\n    b"))
	})

	It("keeps every word when wrapping", func() {
		f := transcript.Formatter{Width: 24, Indent: "    "}
		text := "the patient reports intermittent headaches over the last three weeks"

		out := f.Wrap(text)
		Expect(strings.Fields(out)).To(Equal(strings.Fields(text)))
		Expect(strings.Count(out, "\n")).To(BeNumerically(">", 0))
	})

	DescribeTable("never exceeds the width",
		func(width int, indent, text string) {
			f := transcript.Formatter{Width: width, Indent: indent}

			for _, line := range strings.Split(f.Wrap(text), "\n") {
				Expect(ansi.StringWidth(line)).To(BeNumerically("<=", width), "line %q", line)
				if line != "" {
					Expect(line).To(HavePrefix(indent))
				}
			}
		},
		Entry("default width prose", 120, "    ", strings.Repeat("lorem ipsum dolor sit amet ", 30)),
		Entry("narrow width", 12, "  ", "a b c d e f g h i j k l m n o p"),
		Entry("long unbroken word", 16, "    ", strings.Repeat("x", 100)),
		Entry("mixed lines", 30, "    ", "short\n"+strings.Repeat("word ", 40)+"\n\nend"),
		Entry("runs of spaces", 18, "  ", "a          b          c          d"),
		Entry("wide runes", 20, "    ", strings.Repeat("日本語のテキスト", 6)),
	)
})
