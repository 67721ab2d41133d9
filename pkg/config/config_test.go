package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/intake/pkg/config"
)

var _ = Describe("Config", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	write := func(name, content string) string {
		path := filepath.Join(tmpDir, name)
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	Describe("Default", func() {
		It("carries the stock run settings", func() {
			cfg := config.Default()
			Expect(cfg.Model).To(Equal("gpt-4-0613"))
			Expect(cfg.Temperature).To(BeZero())
			Expect(cfg.MaxTokens).To(Equal(2000))
			Expect(cfg.MaxRetries).To(Equal(7))
			Expect(cfg.Backoff.Duration).To(Equal(time.Second))
			Expect(cfg.LogsDir).To(Equal("logs"))
			Expect(cfg.DebugLogsDir).To(Equal("debugging_logs"))
			Expect(cfg.KeyFile).To(Equal("key_openai.txt"))
			Expect(cfg.Validate()).To(Succeed())
		})
	})

	Describe("Load", func() {
		It("returns defaults for an empty path", func() {
			cfg, err := config.Load("")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.Default()))
		})

		It("overlays file values on the defaults", func() {
			path := write("intake.toml", `
model = "gpt-4o"
temperature = 0.3
retry_backoff = "250ms"
logs_dir = "out"
render = true
`)
			cfg, err := config.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Model).To(Equal("gpt-4o"))
			Expect(cfg.Temperature).To(BeNumerically("~", 0.3, 0.0001))
			Expect(cfg.Backoff.Duration).To(Equal(250 * time.Millisecond))
			Expect(cfg.LogsDir).To(Equal("out"))
			Expect(cfg.Render).To(BeTrue())
			Expect(cfg.MaxTokens).To(Equal(2000))
			Expect(cfg.DebugLogsDir).To(Equal("debugging_logs"))
		})

		It("reports a missing file", func() {
			_, err := config.Load(filepath.Join(tmpDir, "nope.toml"))
			Expect(err).To(MatchError(ContainSubstring("does not exist")))
		})

		It("rejects unknown keys", func() {
			path := write("intake.toml", "modle = \"gpt-4\"\n")
			_, err := config.Load(path)
			Expect(err).To(MatchError(ContainSubstring("modle")))
		})

		It("rejects a bad duration", func() {
			path := write("intake.toml", "retry_backoff = \"soon\"\n")
			_, err := config.Load(path)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Validate", func() {
		DescribeTable("rejects out-of-range values",
			func(mutate func(*config.Config), field string) {
				cfg := config.Default()
				mutate(&cfg)
				err := cfg.Validate()
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring(field))
			},
			Entry("empty model", func(c *config.Config) { c.Model = "" }, "Model"),
			Entry("negative temperature", func(c *config.Config) { c.Temperature = -0.1 }, "Temperature"),
			Entry("temperature above 2", func(c *config.Config) { c.Temperature = 2.5 }, "Temperature"),
			Entry("zero max tokens", func(c *config.Config) { c.MaxTokens = 0 }, "MaxTokens"),
			Entry("negative retries", func(c *config.Config) { c.MaxRetries = -1 }, "MaxRetries"),
			Entry("narrow width", func(c *config.Config) { c.Width = 10 }, "Width"),
			Entry("bad base url", func(c *config.Config) { c.BaseURL = "not a url" }, "BaseURL"),
			Entry("no key file", func(c *config.Config) { c.KeyFile = "" }, "KeyFile"),
		)

		It("accepts a gateway base url", func() {
			cfg := config.Default()
			cfg.BaseURL = "http://localhost:8080/v1"
			Expect(cfg.Validate()).To(Succeed())
		})
	})

	Describe("ReadAPIKey", func() {
		It("trims surrounding whitespace", func() {
			path := write("key.txt", "  sk-test-123\n\n")
			key, err := config.ReadAPIKey(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("sk-test-123"))
		})

		It("fails on an empty file", func() {
			path := write("key.txt", " \n")
			_, err := config.ReadAPIKey(path)
			Expect(err).To(MatchError(ContainSubstring("empty")))
		})

		It("fails on a missing file", func() {
			_, err := config.ReadAPIKey(filepath.Join(tmpDir, "missing.txt"))
			Expect(err).To(HaveOccurred())
		})
	})
})
