package spinner_test

import (
	"bytes"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/intake/pkg/spinner"
)

var _ = Describe("Spinner", func() {
	run := func(f func()) chan struct{} {
		done := make(chan struct{})
		go func() {
			defer close(done)
			f()
		}()
		return done
	}

	It("starts and stops without blocking", func() {
		var buf bytes.Buffer
		s := spinner.New(&buf)

		done := run(func() {
			s.Start("Thinking...")
			time.Sleep(20 * time.Millisecond)
			s.Stop()
		})
		Eventually(done, 5*time.Second).Should(BeClosed())
	})

	It("tolerates Stop without Start", func() {
		s := spinner.New(&bytes.Buffer{})

		done := run(s.Stop)
		Eventually(done, time.Second).Should(BeClosed())
	})

	It("restarts cleanly when started twice", func() {
		s := spinner.New(&bytes.Buffer{})

		done := run(func() {
			s.Start("first")
			s.Start("second")
			s.Stop()
			s.Stop()
		})
		Eventually(done, 5*time.Second).Should(BeClosed())
	})
})

var _ = Describe("Nop", func() {
	It("satisfies Indicator and does nothing", func() {
		var ind spinner.Indicator = spinner.Nop{}
		ind.Start("Thinking...")
		ind.Stop()
	})
})
