package apiclient_test

import (
	"context"
	"errors"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"novo-proxy-go/internal/apiclient"
)

var _ = Describe("Client", func() {
	var (
		server  *ghttp.Server
		session *apiclient.MemorySession
		client  *apiclient.Client
		ctx     context.Context
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		session = apiclient.NewMemorySession("")
		client = apiclient.New(server.URL()+"/api/novo/", session)
		ctx = context.Background()
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("Register", func() {
		It("posts trimmed input and stores the token", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/novo/api/register"),
				ghttp.VerifyContentType("application/json"),
				ghttp.VerifyJSON(`{"name":"Hong","phone":"01012345678"}`),
				func(_ http.ResponseWriter, r *http.Request) {
					Expect(r.Header).NotTo(HaveKey("X-Access-Token"))
				},
				ghttp.RespondWith(http.StatusOK, `{"ok":true,"access_token":"tok-1","user":{"id":7,"name":"Hong","phone":"01012345678"}}`),
			))

			res, err := client.Register(ctx, apiclient.RegisterInput{Name: "  Hong ", Phone: " 01012345678 "})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.User.ID).To(BeEquivalentTo(7))
			Expect(session.Token()).To(Equal("tok-1"))
		})

		It("rejects missing fields without calling the API", func() {
			_, err := client.Register(ctx, apiclient.RegisterInput{Name: "   ", Phone: ""})
			Expect(err).To(MatchError(apiclient.ErrInvalidInput))
			Expect(err.Error()).To(ContainSubstring("name"))
			Expect(server.ReceivedRequests()).To(BeEmpty())
		})

		It("rejects a malformed phone number", func() {
			_, err := client.Register(ctx, apiclient.RegisterInput{Name: "Hong", Phone: "call me"})
			Expect(errors.Is(err, apiclient.ErrInvalidInput)).To(BeTrue())
		})

		It("treats a response without a token as a decode error", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, `{"ok":true}`))

			_, err := client.Register(ctx, apiclient.RegisterInput{Name: "Hong", Phone: "010"})
			Expect(apiclient.IsKind(err, apiclient.KindDecode)).To(BeTrue())
			Expect(session.Token()).To(BeEmpty())
		})
	})

	Describe("authenticated calls", func() {
		BeforeEach(func() {
			Expect(session.SetToken("abc")).To(Succeed())
		})

		It("sends the token on Me", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodGet, "/api/novo/api/me"),
				ghttp.VerifyHeaderKV("X-Access-Token", "abc"),
				ghttp.RespondWith(http.StatusOK, `{"ok":true,"user":{"id":1,"name":"A","phone":"010","check_day":null},"counts":{"recipients":2}}`),
			))

			me, err := client.Me(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(me.User.Name).To(Equal("A"))
			Expect(me.User.CheckDay).To(BeNil())
			Expect(me.Counts.Recipients).To(Equal(2))
		})

		It("lists recipients", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodGet, "/api/novo/api/recipients"),
				ghttp.RespondWith(http.StatusOK, `{"ok":true,"recipients":[{"id":3,"name":"B","phone":"011","relation":"sister","created_at":"2024-01-01"}]}`),
			))

			list, err := client.Recipients(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
			Expect(list[0].Relation).To(Equal("sister"))
		})

		It("adds a recipient with trimmed fields", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/novo/api/recipients"),
				ghttp.VerifyJSON(`{"name":"B","phone":"011","relation":""}`),
				ghttp.RespondWith(http.StatusOK, `{"ok":true}`),
			))

			Expect(client.AddRecipient(ctx, apiclient.RecipientInput{Name: " B ", Phone: "011", Relation: "  "})).To(Succeed())
		})

		It("requires a recipient phone", func() {
			err := client.AddRecipient(ctx, apiclient.RecipientInput{Name: "B"})
			Expect(err).To(MatchError(apiclient.ErrInvalidInput))
			Expect(server.ReceivedRequests()).To(BeEmpty())
		})

		It("deletes a recipient by id", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodDelete, "/api/novo/api/recipients/42"),
				ghttp.RespondWith(http.StatusOK, `{"ok":true}`),
			))

			Expect(client.DeleteRecipient(ctx, 42)).To(Succeed())
		})

		It("reads and saves the message", func() {
			server.AppendHandlers(
				ghttp.CombineHandlers(
					ghttp.VerifyRequest(http.MethodGet, "/api/novo/api/message"),
					ghttp.RespondWith(http.StatusOK, `{"ok":true,"has_message":true,"content":"hello"}`),
				),
				ghttp.CombineHandlers(
					ghttp.VerifyRequest(http.MethodPut, "/api/novo/api/message"),
					ghttp.VerifyJSON(`{"content":"bye"}`),
					ghttp.RespondWith(http.StatusOK, `{"ok":true}`),
				),
			)

			msg, err := client.Message(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.HasMessage).To(BeTrue())
			Expect(msg.Content).To(Equal("hello"))

			Expect(client.SaveMessage(ctx, "  bye\n")).To(Succeed())
		})

		It("starts a payment with the default method and reads the latest", func() {
			server.AppendHandlers(
				ghttp.CombineHandlers(
					ghttp.VerifyRequest(http.MethodPost, "/api/novo/api/payment/start"),
					ghttp.VerifyJSON(`{"pay_method":"kakaopay"}`),
					ghttp.RespondWith(http.StatusOK, `{"ok":true}`),
				),
				ghttp.CombineHandlers(
					ghttp.VerifyRequest(http.MethodGet, "/api/novo/api/payment/latest"),
					ghttp.RespondWith(http.StatusOK, `{"ok":true,"payment":{"id":5,"status":"pending","amount":9900,"created_at":"2024-01-01"}}`),
				),
			)

			Expect(client.StartPayment(ctx, "")).To(Succeed())

			p, err := client.LatestPayment(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(p).NotTo(BeNil())
			Expect(p.Status).To(Equal("pending"))
			Expect(p.Amount).To(BeEquivalentTo(9900))
		})

		It("returns nil when there is no payment yet", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, `{"ok":true,"payment":null}`))

			p, err := client.LatestPayment(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(BeNil())
		})

		It("clears the session when the token is rejected", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusUnauthorized, `{"ok":false,"error":"invalid_token"}`))

			_, err := client.Me(ctx)
			Expect(apiclient.IsInvalidToken(err)).To(BeTrue())
			Expect(apiclient.StatusCode(err)).To(Equal(http.StatusUnauthorized))
			Expect(session.Token()).To(BeEmpty())
		})

		It("keeps the session on other HTTP errors", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusNotFound, `{"error":"not_found","message":"no such recipient"}`))

			err := client.DeleteRecipient(ctx, 9)

			var apiErr *apiclient.Error
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.Kind).To(Equal(apiclient.KindHTTP))
			Expect(apiErr.Status).To(Equal(http.StatusNotFound))
			Expect(apiErr.Code).To(Equal("not_found"))
			Expect(apiErr.Message).To(Equal("no such recipient"))
			Expect(string(apiErr.Body)).To(ContainSubstring("not_found"))
			Expect(session.Token()).To(Equal("abc"))
		})

		It("keeps a non-JSON error body", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusBadGateway, "Bad Gateway"))

			_, err := client.Me(ctx)
			Expect(apiclient.IsKind(err, apiclient.KindHTTP)).To(BeTrue())

			var apiErr *apiclient.Error
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.Code).To(BeEmpty())
			Expect(string(apiErr.Body)).To(Equal("Bad Gateway"))
		})

		It("reports undecodable success bodies", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, `<html>`))

			_, err := client.Message(ctx)
			Expect(apiclient.IsKind(err, apiclient.KindDecode)).To(BeTrue())
		})

		It("logs out by clearing the session", func() {
			Expect(client.Logout()).To(Succeed())
			Expect(session.Token()).To(BeEmpty())
		})
	})

	It("reports network failures", func() {
		c := apiclient.New("http://127.0.0.1:1", session)

		_, err := c.Me(ctx)
		Expect(apiclient.IsKind(err, apiclient.KindNetwork)).To(BeTrue())
		Expect(apiclient.StatusCode(err)).To(BeZero())
	})

	It("uses a custom token header", func() {
		c := apiclient.New(server.URL(), apiclient.NewMemorySession("t"), apiclient.WithTokenHeader("X-Novo-Token"), apiclient.WithHTTPClient(&http.Client{}))
		server.AppendHandlers(ghttp.CombineHandlers(
			ghttp.VerifyRequest(http.MethodGet, "/api/me"),
			ghttp.VerifyHeaderKV("X-Novo-Token", "t"),
			ghttp.RespondWith(http.StatusOK, `{"ok":true,"user":{"id":1}}`),
		))

		_, err := c.Me(ctx)
		Expect(err).NotTo(HaveOccurred())
	})
})
