package apiclient_test

import (
	"os"
	"path/filepath"
	"runtime"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"novo-proxy-go/internal/apiclient"
)

var _ = Describe("Session", func() {
	Describe("MemorySession", func() {
		It("reads, writes and clears the token", func() {
			s := apiclient.NewMemorySession("start")
			Expect(s.Token()).To(Equal("start"))

			Expect(s.SetToken("next")).To(Succeed())
			Expect(s.Token()).To(Equal("next"))

			Expect(s.Clear()).To(Succeed())
			Expect(s.Token()).To(BeEmpty())
		})
	})

	Describe("FileSession", func() {
		var (
			path string
			s    *apiclient.FileSession
		)

		BeforeEach(func() {
			path = filepath.Join(GinkgoT().TempDir(), "nested", "session.toml")
			s = apiclient.NewFileSession(path)
		})

		It("returns an empty token before anything is stored", func() {
			Expect(s.Token()).To(BeEmpty())
		})

		It("persists the token across instances", func() {
			Expect(s.SetToken("tok-123")).To(Succeed())

			again := apiclient.NewFileSession(path)
			Expect(again.Token()).To(Equal("tok-123"))
			Expect(again.Path()).To(Equal(path))
		})

		It("writes the file for its owner only", func() {
			if runtime.GOOS == "windows" {
				Skip("permission bits not meaningful on Windows")
			}
			Expect(s.SetToken("tok")).To(Succeed())

			info, err := os.Stat(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})

		It("clears the token by removing the file", func() {
			Expect(s.SetToken("tok")).To(Succeed())
			Expect(s.Clear()).To(Succeed())

			_, err := os.Stat(path)
			Expect(os.IsNotExist(err)).To(BeTrue())
			Expect(s.Token()).To(BeEmpty())
		})

		It("tolerates clearing a missing file", func() {
			Expect(s.Clear()).To(Succeed())
		})

		It("fails on a corrupt file", func() {
			Expect(os.MkdirAll(filepath.Dir(path), 0o700)).To(Succeed())
			Expect(os.WriteFile(path, []byte("access_token = [unterminated"), 0o600)).To(Succeed())

			_, err := s.Token()
			Expect(err).To(MatchError(ContainSubstring("session: parse")))
		})
	})
})
