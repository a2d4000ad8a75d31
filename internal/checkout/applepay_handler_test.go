package checkout_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/checkout"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/gateway"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transaction"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transport"

	txdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/transaction"
)

var _ = Describe("ApplePayHandler", func() {
	var (
		handler       *checkout.ApplePayHandler
		txRepo        *mockTransactionRepo
		txService     *transaction.Service
		granter       *mockGranter
		gatewayClient *mockGatewayClient
	)

	walletToken := json.RawMessage(`{"paymentData":"opaque"}`)

	postCharge := func(payload checkout.ApplePayRequest, user *internal.CurrentUser) (*httptest.ResponseRecorder, checkout.ApplePayResponse) {
		body, err := json.Marshal(payload)
		Expect(err).ToNot(HaveOccurred())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/applepay", bytes.NewReader(body))
		if user != nil {
			req = req.WithContext(internal.ContextWithUser(req.Context(), user))
		}
		recorder := httptest.NewRecorder()
		handler.HandleCharge(recorder, req)

		var resp checkout.ApplePayResponse
		_ = json.Unmarshal(recorder.Body.Bytes(), &resp)
		return recorder, resp
	}

	student := &internal.CurrentUser{ID: 42, Email: "talib@mail.com", Role: "student", Locale: "ar"}

	BeforeEach(func() {
		txRepo = newMockTransactionRepo()
		txService = transaction.NewService(txRepo, testLogger())
		granter = &mockGranter{}
		gatewayClient = &mockGatewayClient{}
		handler = checkout.NewApplePayHandler(transport.NewBaseHandler(testLogger()), txService, granter, gatewayClient, nil, testLogger())
	})

	Context("when a course purchase is approved", func() {
		It("should record the payment and grant the course", func() {
			// Given
			gatewayClient.payment = &gateway.Payment{ID: "pay_ap_1", Status: "paid", Amount: 19_900, Currency: "SAR"}

			// When
			recorder, resp := postCharge(checkout.ApplePayRequest{
				Token:    walletToken,
				Amount:   19_900,
				ItemType: "course",
				ItemID:   7,
				ItemName: "أساسيات التفكير المستقبلي",
			}, student)

			// Then
			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(resp.Success).To(BeTrue())
			Expect(resp.Status).To(Equal("paid"))
			Expect(resp.PaymentID).To(Equal("pay_ap_1"))
			Expect(granter.granted).To(HaveLen(1))
			Expect(gatewayClient.lastChargeReq.Source.Type).To(Equal("applepay"))

			stored := txRepo.transactions[resp.TransactionID]
			Expect(stored.Status).To(Equal("paid"))
			Expect(*stored.GatewayID).To(Equal("pay_ap_1"))
		})
	})

	Context("when a consultation is bought over apple pay", func() {
		It("should record the paid transaction without granting", func() {
			// Given
			gatewayClient.payment = &gateway.Payment{ID: "pay_ap_2", Status: "paid", Amount: 30_000, Currency: "SAR"}

			// When
			recorder, resp := postCharge(checkout.ApplePayRequest{
				Token:    walletToken,
				Amount:   30_000,
				ItemType: "consultation",
				ItemID:   5,
				ItemName: "استشارة استراتيجية",
			}, student)

			// Then
			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(resp.Success).To(BeTrue())
			Expect(txRepo.transactions[resp.TransactionID].Status).To(Equal("paid"))
			Expect(granter.granted).To(BeEmpty())
		})
	})

	Context("when the gateway declines the charge", func() {
		It("should mark the transaction failed with the gateway message", func() {
			// Given
			gatewayClient.payment = &gateway.Payment{ID: "pay_ap_3", Status: "failed", Message: "DECLINED", Amount: 19_900}

			// When
			recorder, resp := postCharge(checkout.ApplePayRequest{
				Token:    walletToken,
				Amount:   19_900,
				ItemType: "course",
				ItemID:   7,
				ItemName: "دورة",
			}, student)

			// Then
			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(resp.Success).To(BeFalse())
			Expect(resp.Status).To(Equal("failed"))
			Expect(granter.granted).To(BeEmpty())

			stored := txRepo.transactions[resp.TransactionID]
			Expect(stored.Status).To(Equal("failed"))
			Expect(*stored.FailureReason).To(Equal("DECLINED"))
		})
	})

	Context("when the gateway call itself errors", func() {
		It("should fail the transaction and surface the gateway error", func() {
			// Given
			gatewayClient.chargeError = internal.NewGatewayError("gateway unreachable", nil)

			// When
			recorder, _ := postCharge(checkout.ApplePayRequest{
				Token:    walletToken,
				Amount:   19_900,
				ItemType: "course",
				ItemID:   7,
				ItemName: "دورة",
			}, student)

			// Then
			Expect(recorder.Code).To(Equal(http.StatusBadGateway))
			Expect(txRepo.transactions).To(HaveLen(1))
			for _, stored := range txRepo.transactions {
				Expect(stored.Status).To(Equal(txdm.StatusFailed))
				Expect(*stored.FailureReason).To(Equal("apple pay charge failed"))
			}
		})
	})

	Context("when the request is unauthenticated", func() {
		It("should answer 401", func() {
			// When
			recorder, _ := postCharge(checkout.ApplePayRequest{
				Token:    walletToken,
				Amount:   19_900,
				ItemType: "course",
				ItemID:   7,
				ItemName: "دورة",
			}, nil)

			// Then
			Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
			Expect(txRepo.transactions).To(BeEmpty())
		})
	})

	Context("when the request is invalid", func() {
		It("should reject a missing token", func() {
			// When
			recorder, _ := postCharge(checkout.ApplePayRequest{
				Amount:   19_900,
				ItemType: "course",
				ItemID:   7,
				ItemName: "دورة",
			}, student)

			// Then
			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(txRepo.transactions).To(BeEmpty())
			Expect(gatewayClient.chargeCalls).To(Equal(0))
		})

		It("should reject a zero amount", func() {
			// When
			recorder, _ := postCharge(checkout.ApplePayRequest{
				Token:    walletToken,
				Amount:   0,
				ItemType: "course",
				ItemID:   7,
				ItemName: "دورة",
			}, student)

			// Then
			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(txRepo.transactions).To(BeEmpty())
		})
	})
})
