package offprintcmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	offprintcmder "github.com/offprinthq/offprint/cmd/offprint"
)

var _ = Describe("NewOffprintCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := offprintcmder.NewOffprintCmd()
		Expect(cmd.Use).To(Equal("offprint"))
	})

	It("registers all subcommands", func() {
		cmd := offprintcmder.NewOffprintCmd()
		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements(
			"init", "config", "ingest", "papers", "ask",
			"translate", "simplify", "recommend", "reprocess",
			"remove", "version",
		))
	})

	It("has a persistent debug flag", func() {
		cmd := offprintcmder.NewOffprintCmd()
		f := cmd.PersistentFlags().Lookup("debug")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal("false"))
	})

	It("has a persistent config-dir flag", func() {
		cmd := offprintcmder.NewOffprintCmd()
		f := cmd.PersistentFlags().Lookup("config-dir")
		Expect(f).NotTo(BeNil())
	})
})
