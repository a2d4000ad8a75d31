package gateway_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/gateway"
)

func TestGateway(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Gateway Module Suite")
}

var _ = Describe("GatewayClient", func() {
	var (
		client     *gateway.Client
		mockServer *httptest.Server
		logger     *slog.Logger
	)

	newClient := func(url string) *gateway.Client {
		return gateway.NewClient(url, "sk_test_secret", "SAR", 5*time.Second, logger)
	}

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	})

	AfterEach(func() {
		if mockServer != nil {
			mockServer.Close()
			mockServer = nil
		}
	})

	Describe("CreateInvoice", func() {
		Context("when the gateway accepts the invoice", func() {
			It("should authenticate with the secret key and return the hosted form URL", func() {
				// Given
				var gotAuthUser, gotAuthPass string
				var gotPath string
				var gotBody gateway.InvoiceRequest

				mockServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					gotAuthUser, gotAuthPass, _ = r.BasicAuth()
					gotPath = r.URL.Path
					_ = json.NewDecoder(r.Body).Decode(&gotBody)

					w.Header().Set("Content-Type", "application/json")
					json.NewEncoder(w).Encode(gateway.Invoice{
						ID:     "inv_1",
						Status: "initiated",
						Amount: gotBody.Amount,
						URL:    "https://pay.example.com/inv_1",
					})
				}))
				client = newClient(mockServer.URL)

				// When
				invoice, err := client.CreateInvoice(context.Background(), &gateway.InvoiceRequest{
					Amount:      19_900,
					Description: "دورة",
					CallbackURL: "https://api.example.com/api/v1/payments/callback",
					Metadata:    map[string]string{"transaction_id": "1"},
				})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(invoice.ID).To(Equal("inv_1"))
				Expect(invoice.URL).To(Equal("https://pay.example.com/inv_1"))
				Expect(gotPath).To(Equal("/invoices"))
				Expect(gotAuthUser).To(Equal("sk_test_secret"))
				Expect(gotAuthPass).To(BeEmpty())
				Expect(gotBody.Currency).To(Equal("SAR"))
				Expect(gotBody.Metadata).To(HaveKeyWithValue("transaction_id", "1"))
			})
		})

		Context("when the gateway declines", func() {
			It("should return a declined gateway error for HTTP 400", func() {
				// Given
				mockServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusBadRequest)
					w.Write([]byte(`{"message": "invalid amount"}`))
				}))
				client = newClient(mockServer.URL)

				// When
				invoice, err := client.CreateInvoice(context.Background(), &gateway.InvoiceRequest{Amount: 19_900})

				// Then
				Expect(err).To(HaveOccurred())
				Expect(invoice).To(BeNil())
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeGatewayDeclined))
			})
		})

		Context("when the gateway errors internally", func() {
			It("should return a generic gateway failure for HTTP 500", func() {
				// Given
				mockServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
				}))
				client = newClient(mockServer.URL)

				// When
				_, err := client.CreateInvoice(context.Background(), &gateway.InvoiceRequest{Amount: 19_900})

				// Then
				Expect(err).To(HaveOccurred())
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeGatewayFailed))
			})
		})

		Context("when the gateway is unreachable", func() {
			It("should wrap the transport error", func() {
				// Given
				client = newClient("http://127.0.0.1:1")

				// When
				_, err := client.CreateInvoice(context.Background(), &gateway.InvoiceRequest{Amount: 19_900})

				// Then
				Expect(err).To(HaveOccurred())
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Message).To(ContainSubstring("gateway unreachable"))
			})
		})
	})

	Describe("ChargeToken", func() {
		Context("when the wallet charge succeeds", func() {
			It("should post the token to the payments endpoint", func() {
				// Given
				var gotPath string
				var gotBody gateway.TokenChargeRequest

				mockServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					gotPath = r.URL.Path
					_ = json.NewDecoder(r.Body).Decode(&gotBody)

					w.Header().Set("Content-Type", "application/json")
					json.NewEncoder(w).Encode(gateway.Payment{
						ID:       "pay_1",
						Status:   "paid",
						Amount:   gotBody.Amount,
						Currency: "SAR",
					})
				}))
				client = newClient(mockServer.URL)

				// When
				payment, err := client.ChargeToken(context.Background(), &gateway.TokenChargeRequest{
					Amount:      19_900,
					Description: "دورة",
					Source: gateway.TokenSource{
						Type:  "applepay",
						Token: json.RawMessage(`{"paymentData":"opaque"}`),
					},
				})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(payment.ID).To(Equal("pay_1"))
				Expect(payment.Status).To(Equal("paid"))
				Expect(gotPath).To(Equal("/payments"))
				Expect(gotBody.Source.Type).To(Equal("applepay"))
				Expect(gotBody.Currency).To(Equal("SAR"))
			})
		})

		Context("when the wallet charge is declined", func() {
			It("should return a declined gateway error for HTTP 402", func() {
				// Given
				mockServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusPaymentRequired)
					w.Write([]byte(`{"message": "card declined"}`))
				}))
				client = newClient(mockServer.URL)

				// When
				payment, err := client.ChargeToken(context.Background(), &gateway.TokenChargeRequest{Amount: 19_900})

				// Then
				Expect(err).To(HaveOccurred())
				Expect(payment).To(BeNil())
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeGatewayDeclined))
			})
		})
	})

	Describe("GetPayment", func() {
		Context("when the payment exists", func() {
			It("should fetch it by id", func() {
				// Given
				var gotPath string
				mockServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					gotPath = r.URL.Path
					w.Header().Set("Content-Type", "application/json")
					json.NewEncoder(w).Encode(gateway.Payment{ID: "pay_1", Status: "paid"})
				}))
				client = newClient(mockServer.URL)

				// When
				payment, err := client.GetPayment(context.Background(), "pay_1")

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(payment.ID).To(Equal("pay_1"))
				Expect(gotPath).To(Equal("/payments/pay_1"))
			})
		})
	})
})
