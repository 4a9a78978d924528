package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/offprinthq/offprint/pkg/config"
)

var _ = Describe("Configer", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	Describe("LoadConfig", func() {
		It("returns full defaults when no config file exists", func() {
			cfger, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Embedding.Model).To(Equal("nomic-embed-text"))
			Expect(cfg.Embedding.Dimensions).To(Equal(uint(768)))
			Expect(cfg.LLM.Model).To(Equal("qwen2.5:7b"))
			Expect(cfg.Chunking.MaxChars).To(Equal(500))
			Expect(cfg.Chunking.OverlapChars).To(Equal(50))
			Expect(cfg.Retrieval.MinScore).To(Equal(0.25))
		})

		It("fills unset fields from defaults", func() {
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"),
				[]byte("[chunking]\nmax_chars = 800\n"), 0o600)
			Expect(err).NotTo(HaveOccurred())

			cfger, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Chunking.MaxChars).To(Equal(800))
			Expect(cfg.Chunking.OverlapChars).To(Equal(50))
			Expect(cfg.Embedding.Model).To(Equal("nomic-embed-text"))
		})

		It("rejects malformed TOML", func() {
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"),
				[]byte("[chunking\nmax_chars = nope"), 0o600)
			Expect(err).NotTo(HaveOccurred())

			cfger, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = cfger.LoadConfig()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SetConfigValue and GetConfigValue", func() {
		It("round-trips string keys through the file", func() {
			cfger, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfger.SetConfigValue("llm.model", "llama3.2")).To(Succeed())

			value, err := cfger.GetConfigValue("llm.model")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal("llama3.2"))
		})

		It("parses numeric keys", func() {
			cfger, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfger.SetConfigValue("retrieval.top_k", "8")).To(Succeed())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Retrieval.TopK).To(Equal(8))
		})

		It("rejects non-numeric values for numeric keys", func() {
			cfger, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfger.SetConfigValue("embedding.dimensions", "lots")).NotTo(Succeed())
		})

		It("rejects unknown keys", func() {
			cfger, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfger.SetConfigValue("nope.nothing", "x")).NotTo(Succeed())
			_, err = cfger.GetConfigValue("nope.nothing")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ValidConfigKeys", func() {
		It("is sorted and covers every section", func() {
			keys := config.ValidConfigKeys()
			Expect(keys).To(ContainElements(
				"storage.sqlite_path",
				"vector_store.provider",
				"embedding.model",
				"llm.model",
				"chunking.max_chars",
				"retrieval.min_score",
				"ingest.workers",
				"arxiv.base_url",
			))
			for _, k := range keys {
				Expect(config.IsValidConfigKey(k)).To(BeTrue())
			}
		})
	})
})
