package apiclient_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"novo-proxy-go/internal/apiclient"
)

var _ = Describe("Error", func() {
	It("formats HTTP errors with code and message", func() {
		err := &apiclient.Error{Kind: apiclient.KindHTTP, Op: "GET /api/me", Status: 401, Code: "invalid_token", Message: "expired"}
		Expect(err.Error()).To(Equal("novo api: GET /api/me: http 401: invalid_token: expired"))
	})

	It("formats HTTP errors without a JSON body", func() {
		err := &apiclient.Error{Kind: apiclient.KindHTTP, Op: "GET /api/me", Status: 502}
		Expect(err.Error()).To(Equal("novo api: GET /api/me: http 502"))
	})

	It("formats and unwraps network errors", func() {
		cause := errors.New("connection refused")
		err := &apiclient.Error{Kind: apiclient.KindNetwork, Op: "GET /api/me", Err: cause}
		Expect(err.Error()).To(Equal("novo api: GET /api/me: network error: connection refused"))
		Expect(errors.Is(err, cause)).To(BeTrue())
	})

	DescribeTable("IsKind",
		func(err error, kind apiclient.Kind, want bool) {
			Expect(apiclient.IsKind(err, kind)).To(Equal(want))
		},
		Entry("matching kind", &apiclient.Error{Kind: apiclient.KindDecode}, apiclient.KindDecode, true),
		Entry("wrapped", fmt.Errorf("ctx: %w", &apiclient.Error{Kind: apiclient.KindHTTP}), apiclient.KindHTTP, true),
		Entry("other kind", &apiclient.Error{Kind: apiclient.KindHTTP}, apiclient.KindNetwork, false),
		Entry("plain error", errors.New("x"), apiclient.KindNetwork, false),
	)

	It("detects invalid_token only on HTTP errors", func() {
		Expect(apiclient.IsInvalidToken(&apiclient.Error{Kind: apiclient.KindHTTP, Code: apiclient.CodeInvalidToken})).To(BeTrue())
		Expect(apiclient.IsInvalidToken(&apiclient.Error{Kind: apiclient.KindHTTP, Code: "not_found"})).To(BeFalse())
		Expect(apiclient.IsInvalidToken(errors.New("invalid_token"))).To(BeFalse())
	})

	It("reports the status code", func() {
		Expect(apiclient.StatusCode(fmt.Errorf("w: %w", &apiclient.Error{Kind: apiclient.KindHTTP, Status: 404}))).To(Equal(404))
		Expect(apiclient.StatusCode(errors.New("x"))).To(BeZero())
	})

	It("names kinds", func() {
		Expect(apiclient.KindNetwork.String()).To(Equal("network"))
		Expect(apiclient.KindHTTP.String()).To(Equal("http"))
		Expect(apiclient.KindDecode.String()).To(Equal("decode"))
		Expect(apiclient.Kind(9).String()).To(Equal("kind(9)"))
	})
})
