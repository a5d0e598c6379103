package logging_test

import (
	"bytes"
	"nregastats/internal/logging"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Init", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	AfterEach(func() {
		logging.Init(logging.Config{})
	})

	It("writes JSON lines with the child context fields", func() {
		logging.Init(logging.Config{Level: "info", Output: buf})

		l := logging.With().Str("run_id", "run-1").Logger()
		l.Info().Int("records", 22).Msg("sync completed")

		var line map[string]interface{}
		Expect(json.Unmarshal(buf.Bytes(), &line)).To(Succeed())
		Expect(line).To(HaveKeyWithValue("level", "info"))
		Expect(line).To(HaveKeyWithValue("run_id", "run-1"))
		Expect(line).To(HaveKeyWithValue("records", BeNumerically("==", 22)))
		Expect(line).To(HaveKeyWithValue("message", "sync completed"))
		Expect(line).To(HaveKey("time"))
	})

	It("drops events below the configured level", func() {
		logging.Init(logging.Config{Level: "WARN", Output: buf})

		logging.Info().Msg("hidden")
		logging.Debug().Msg("hidden")
		logging.Warn().Msg("shown")

		Expect(buf.String()).NotTo(ContainSubstring("hidden"))
		Expect(buf.String()).To(ContainSubstring("shown"))
	})

	It("falls back to info for an unknown level", func() {
		logging.Init(logging.Config{Level: "loud", Output: buf})

		logging.Debug().Msg("hidden")
		logging.Info().Msg("shown")

		Expect(buf.String()).NotTo(ContainSubstring("hidden"))
		Expect(buf.String()).To(ContainSubstring("shown"))
	})

	It("renders human readable lines in console format", func() {
		logging.Init(logging.Config{Format: "console", Output: buf})

		logging.Info().Str("region_code", "1201").Msg("region created from registry")

		Expect(buf.String()).To(ContainSubstring("region created from registry"))
		Expect(buf.String()).To(ContainSubstring("region_code="))
		Expect(json.Valid(buf.Bytes())).To(BeFalse())
	})
})
