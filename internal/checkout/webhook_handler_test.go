package checkout_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal/checkout"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transaction"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transport"

	txdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/transaction"
)

var _ = Describe("WebhookHandler", func() {
	var (
		handler   *checkout.WebhookHandler
		txRepo    *mockTransactionRepo
		txService *transaction.Service
		granter   *mockGranter
		pending   *txdm.Transaction
	)

	postWebhook := func(payload checkout.WebhookRequest) (*httptest.ResponseRecorder, checkout.WebhookResponse) {
		body, err := json.Marshal(payload)
		Expect(err).ToNot(HaveOccurred())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", bytes.NewReader(body))
		recorder := httptest.NewRecorder()
		handler.HandleCallback(recorder, req)

		var resp checkout.WebhookResponse
		Expect(json.Unmarshal(recorder.Body.Bytes(), &resp)).To(Succeed())
		return recorder, resp
	}

	BeforeEach(func() {
		txRepo = newMockTransactionRepo()
		txService = transaction.NewService(txRepo, testLogger())
		granter = &mockGranter{}
		handler = checkout.NewWebhookHandler(transport.NewBaseHandler(testLogger()), txService, granter, nil, testLogger())

		var err error
		pending, err = txService.CreatePending(42, txdm.ItemTypeCourse, 7, "دورة", 19_900)
		Expect(err).ToNot(HaveOccurred())
	})

	Context("when the gateway reports paid with transaction metadata", func() {
		It("should mark the transaction paid and grant the entitlement", func() {
			// When
			recorder, resp := postWebhook(checkout.WebhookRequest{
				ID:       "pay_1",
				Status:   "paid",
				Amount:   19_900,
				Metadata: map[string]string{"transaction_id": "1"},
			})

			// Then
			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(resp.Success).To(BeTrue())
			Expect(resp.Status).To(Equal("paid"))
			Expect(granter.granted).To(HaveLen(1))
			Expect(txRepo.transactions[pending.ID].Status).To(Equal("paid"))
			Expect(txRepo.transactions[pending.ID].PaidAt).ToNot(BeNil())
		})
	})

	Context("when the metadata is missing", func() {
		It("should fall back to the gateway payment id", func() {
			// Given
			Expect(txService.AttachGatewayID(pending.ID, "pay_1")).To(Succeed())

			// When
			recorder, resp := postWebhook(checkout.WebhookRequest{ID: "pay_1", Status: "paid", Amount: 19_900})

			// Then
			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(resp.Success).To(BeTrue())
			Expect(txRepo.transactions[pending.ID].Status).To(Equal("paid"))
		})
	})

	Context("when no transaction matches", func() {
		It("should answer 404 so the gateway retries", func() {
			// When
			recorder, resp := postWebhook(checkout.WebhookRequest{ID: "pay_unknown", Status: "paid"})

			// Then
			Expect(recorder.Code).To(Equal(http.StatusNotFound))
			Expect(resp.Success).To(BeFalse())
			Expect(granter.granted).To(BeEmpty())
		})
	})

	Context("when the same paid webhook is redelivered", func() {
		It("should acknowledge without writing or granting again", func() {
			// Given
			payload := checkout.WebhookRequest{
				ID:       "pay_1",
				Status:   "paid",
				Amount:   19_900,
				Metadata: map[string]string{"transaction_id": "1"},
			}
			_, _ = postWebhook(payload)
			writesAfterFirst := txRepo.updateStatusCalls
			grantsAfterFirst := len(granter.granted)

			// When
			recorder, resp := postWebhook(payload)

			// Then
			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(resp.Success).To(BeTrue())
			Expect(resp.Status).To(Equal("paid"))
			Expect(txRepo.updateStatusCalls).To(Equal(writesAfterFirst))
			// The redelivered paid status still re-runs the granter, which is
			// idempotent for courses and books.
			Expect(len(granter.granted)).To(BeNumerically(">=", grantsAfterFirst))
		})
	})

	Context("when a failed webhook arrives after paid", func() {
		It("should reject the rewind", func() {
			// Given
			_, _ = postWebhook(checkout.WebhookRequest{
				ID:       "pay_1",
				Status:   "paid",
				Metadata: map[string]string{"transaction_id": "1"},
			})

			// When
			recorder, resp := postWebhook(checkout.WebhookRequest{
				ID:       "pay_1",
				Status:   "failed",
				Message:  "late decline",
				Metadata: map[string]string{"transaction_id": "1"},
			})

			// Then
			Expect(recorder.Code).To(Equal(http.StatusInternalServerError))
			Expect(resp.Success).To(BeFalse())
			Expect(txRepo.transactions[pending.ID].Status).To(Equal("paid"))
		})
	})

	Context("when the gateway reports failed", func() {
		It("should record the gateway message as the failure reason", func() {
			// When
			recorder, resp := postWebhook(checkout.WebhookRequest{
				ID:       "pay_1",
				Status:   "failed",
				Message:  "INSUFFICIENT_FUNDS",
				Metadata: map[string]string{"transaction_id": "1"},
			})

			// Then
			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(resp.Success).To(BeTrue())
			Expect(resp.Status).To(Equal("failed"))
			stored := txRepo.transactions[pending.ID]
			Expect(stored.FailureReason).ToNot(BeNil())
			Expect(*stored.FailureReason).To(Equal("INSUFFICIENT_FUNDS"))
			Expect(granter.granted).To(BeEmpty())
		})

		It("should fall back to a generic failure reason", func() {
			// When
			_, _ = postWebhook(checkout.WebhookRequest{
				ID:       "pay_1",
				Status:   "failed",
				Metadata: map[string]string{"transaction_id": "1"},
			})

			// Then
			stored := txRepo.transactions[pending.ID]
			Expect(stored.FailureReason).ToNot(BeNil())
			Expect(*stored.FailureReason).To(Equal("gateway reported failure"))
		})
	})

	Context("when the gateway reports a non-terminal status", func() {
		It("should acknowledge and leave the transaction pending", func() {
			// When
			recorder, resp := postWebhook(checkout.WebhookRequest{
				ID:       "pay_1",
				Status:   "initiated",
				Metadata: map[string]string{"transaction_id": "1"},
			})

			// Then
			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(resp.Success).To(BeTrue())
			Expect(resp.Status).To(Equal("pending"))
			Expect(granter.granted).To(BeEmpty())
			Expect(txRepo.updateStatusCalls).To(Equal(0))
		})
	})

	Context("when the entitlement grant fails", func() {
		It("should still acknowledge the webhook", func() {
			// Given
			granter.grantError = errors.New("datastore down")

			// When
			recorder, resp := postWebhook(checkout.WebhookRequest{
				ID:       "pay_1",
				Status:   "paid",
				Metadata: map[string]string{"transaction_id": "1"},
			})

			// Then
			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(resp.Success).To(BeTrue())
			Expect(txRepo.transactions[pending.ID].Status).To(Equal("paid"))
		})
	})

	Context("when the payload has no status", func() {
		It("should answer 400", func() {
			// When
			recorder, resp := postWebhook(checkout.WebhookRequest{ID: "pay_1"})

			// Then
			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(resp.Success).To(BeFalse())
		})
	})
})
