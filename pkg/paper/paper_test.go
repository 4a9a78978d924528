package paper_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/offprinthq/offprint/pkg/paper"
)

var _ = Describe("ValidTransition", func() {
	It("allows processing to ready and failed", func() {
		Expect(paper.ValidTransition(paper.StatusProcessing, paper.StatusReady)).To(BeTrue())
		Expect(paper.ValidTransition(paper.StatusProcessing, paper.StatusFailed)).To(BeTrue())
	})

	It("allows ready and failed back to processing", func() {
		Expect(paper.ValidTransition(paper.StatusReady, paper.StatusProcessing)).To(BeTrue())
		Expect(paper.ValidTransition(paper.StatusFailed, paper.StatusProcessing)).To(BeTrue())
	})

	It("rejects everything else", func() {
		Expect(paper.ValidTransition(paper.StatusReady, paper.StatusFailed)).To(BeFalse())
		Expect(paper.ValidTransition(paper.StatusFailed, paper.StatusReady)).To(BeFalse())
		Expect(paper.ValidTransition(paper.StatusProcessing, paper.StatusProcessing)).To(BeFalse())
		Expect(paper.ValidTransition(paper.Status("bogus"), paper.StatusReady)).To(BeFalse())
	})
})
