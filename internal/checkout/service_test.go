package checkout_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/datatypes"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/checkout"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/gateway"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transaction"

	catalogdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/catalog"
	txdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/transaction"
)

func TestCheckout(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Checkout Module Suite")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// Mock transaction repository backing the real transaction service, so the
// checkout paths exercise the actual transition rules.
type mockTransactionRepo struct {
	transactions      map[int64]*txdm.Transaction
	nextID            int64
	createError       error
	updateStatusError error
	updateStatusCalls int
}

func newMockTransactionRepo() *mockTransactionRepo {
	return &mockTransactionRepo{
		transactions: make(map[int64]*txdm.Transaction),
		nextID:       1,
	}
}

func (m *mockTransactionRepo) Create(t *txdm.Transaction) error {
	if m.createError != nil {
		return m.createError
	}
	t.ID = m.nextID
	m.nextID++
	t.CreatedAt = time.Now()
	m.transactions[t.ID] = t
	return nil
}

func (m *mockTransactionRepo) GetByID(id int64) (*txdm.Transaction, error) {
	t, exists := m.transactions[id]
	if !exists {
		return nil, errors.New("transaction not found")
	}
	return t, nil
}

func (m *mockTransactionRepo) GetByExternalID(externalID string) (*txdm.Transaction, error) {
	for _, t := range m.transactions {
		if t.ExternalID == externalID {
			return t, nil
		}
	}
	return nil, errors.New("transaction not found")
}

func (m *mockTransactionRepo) GetByGatewayID(gatewayID string) (*txdm.Transaction, error) {
	for _, t := range m.transactions {
		if t.GatewayID != nil && *t.GatewayID == gatewayID {
			return t, nil
		}
	}
	return nil, errors.New("transaction not found")
}

func (m *mockTransactionRepo) GetByUserID(userID int64, offset, limit int) ([]*txdm.Transaction, error) {
	var out []*txdm.Transaction
	for _, t := range m.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTransactionRepo) UpdateStatus(id int64, status string, gatewayID *string, gatewayResponse datatypes.JSON, failureReason *string, paidAt *time.Time) error {
	if m.updateStatusError != nil {
		return m.updateStatusError
	}
	m.updateStatusCalls++
	if t, exists := m.transactions[id]; exists {
		t.Status = status
		if gatewayID != nil {
			t.GatewayID = gatewayID
		}
		t.GatewayResponse = gatewayResponse
		t.FailureReason = failureReason
		t.PaidAt = paidAt
	}
	return nil
}

func (m *mockTransactionRepo) SetGatewayID(id int64, gatewayID string) error {
	if t, exists := m.transactions[id]; exists {
		t.GatewayID = &gatewayID
	}
	return nil
}

func (m *mockTransactionRepo) CountByStatus() (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, t := range m.transactions {
		counts[t.Status]++
	}
	return counts, nil
}

func (m *mockTransactionRepo) ExpireStalePending(olderThan time.Time, failureReason string) (int64, error) {
	return 0, nil
}

// Mock granter recording every grant request
type mockGranter struct {
	granted    []*txdm.Transaction
	grantError error
}

func (m *mockGranter) GrantForTransaction(ctx context.Context, t *txdm.Transaction) error {
	if m.grantError != nil {
		return m.grantError
	}
	m.granted = append(m.granted, t)
	return nil
}

// Mock gateway client counting calls
type mockGatewayClient struct {
	invoiceCalls   int
	chargeCalls    int
	lastInvoiceReq *gateway.InvoiceRequest
	lastChargeReq  *gateway.TokenChargeRequest
	invoice        *gateway.Invoice
	payment        *gateway.Payment
	invoiceError   error
	chargeError    error
}

func (m *mockGatewayClient) CreateInvoice(ctx context.Context, req *gateway.InvoiceRequest) (*gateway.Invoice, error) {
	m.invoiceCalls++
	m.lastInvoiceReq = req
	if m.invoiceError != nil {
		return nil, m.invoiceError
	}
	if m.invoice != nil {
		return m.invoice, nil
	}
	return &gateway.Invoice{ID: "inv_default", Status: "initiated", Amount: req.Amount, URL: "https://pay.example.com/inv_default"}, nil
}

func (m *mockGatewayClient) ChargeToken(ctx context.Context, req *gateway.TokenChargeRequest) (*gateway.Payment, error) {
	m.chargeCalls++
	m.lastChargeReq = req
	if m.chargeError != nil {
		return nil, m.chargeError
	}
	if m.payment != nil {
		return m.payment, nil
	}
	return &gateway.Payment{ID: "pay_default", Status: "paid", Amount: req.Amount, Currency: "SAR"}, nil
}

func (m *mockGatewayClient) GetPayment(ctx context.Context, paymentID string) (*gateway.Payment, error) {
	if m.payment != nil {
		return m.payment, nil
	}
	return nil, errors.New("payment not found")
}

// Mock price catalog
type mockPriceCatalog struct {
	courses map[int64]*catalogdm.Course
	books   map[int64]*catalogdm.Book
}

func newMockPriceCatalog() *mockPriceCatalog {
	return &mockPriceCatalog{
		courses: make(map[int64]*catalogdm.Course),
		books:   make(map[int64]*catalogdm.Book),
	}
}

func (m *mockPriceCatalog) GetCourse(id int64) (*catalogdm.Course, error) {
	c, exists := m.courses[id]
	if !exists {
		return nil, errors.New("course not found")
	}
	return c, nil
}

func (m *mockPriceCatalog) GetBook(id int64) (*catalogdm.Book, error) {
	b, exists := m.books[id]
	if !exists {
		return nil, errors.New("book not found")
	}
	return b, nil
}

var _ = Describe("CheckoutService", func() {
	var (
		service       *checkout.Service
		txRepo        *mockTransactionRepo
		txService     *transaction.Service
		granter       *mockGranter
		gatewayClient *mockGatewayClient
		catalog       *mockPriceCatalog
		ctx           context.Context
	)

	BeforeEach(func() {
		txRepo = newMockTransactionRepo()
		txService = transaction.NewService(txRepo, testLogger())
		granter = &mockGranter{}
		gatewayClient = &mockGatewayClient{}
		catalog = newMockPriceCatalog()
		ctx = context.Background()

		service = checkout.NewService(txService, granter, gatewayClient, catalog, nil,
			"pk_test_publishable", "https://api.example.com/api/v1/payments/callback", testLogger())
	})

	Describe("Initiate", func() {
		Context("when buying a priced course", func() {
			BeforeEach(func() {
				catalog.courses[7] = &catalogdm.Course{ID: 7, TitleAr: "أساسيات التفكير المستقبلي", PriceHalalas: 19_900}
			})

			It("should create a pending transaction and a gateway invoice", func() {
				// Given
				gatewayClient.invoice = &gateway.Invoice{ID: "inv_1", Status: "initiated", URL: "https://pay.example.com/inv_1"}

				// When
				resp, err := service.Initiate(ctx, 42, &checkout.InitiateRequest{ItemType: "course", ItemID: 7})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(resp.Status).To(Equal("pending"))
				Expect(resp.AmountHalalas).To(Equal(int64(19_900)))
				Expect(resp.PaymentURL).To(Equal("https://pay.example.com/inv_1"))
				Expect(resp.PublishableKey).To(Equal("pk_test_publishable"))
				Expect(gatewayClient.invoiceCalls).To(Equal(1))

				stored := txRepo.transactions[resp.TransactionID]
				Expect(stored.GatewayID).ToNot(BeNil())
				Expect(*stored.GatewayID).To(Equal("inv_1"))
			})

			It("should tag the invoice with the transaction and external ids", func() {
				// When
				resp, err := service.Initiate(ctx, 42, &checkout.InitiateRequest{ItemType: "course", ItemID: 7})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(gatewayClient.lastInvoiceReq.Metadata).To(HaveKeyWithValue("external_id", resp.ExternalID))
				Expect(gatewayClient.lastInvoiceReq.Metadata).To(HaveKey("transaction_id"))
				Expect(gatewayClient.lastInvoiceReq.CallbackURL).To(Equal("https://api.example.com/api/v1/payments/callback"))
			})

			It("should ignore any client-supplied amount and price server side", func() {
				// When
				resp, err := service.Initiate(ctx, 42, &checkout.InitiateRequest{ItemType: "course", ItemID: 7, Amount: 1})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(resp.AmountHalalas).To(Equal(int64(19_900)))
			})
		})

		Context("when the item is free", func() {
			BeforeEach(func() {
				catalog.courses[8] = &catalogdm.Course{ID: 8, TitleAr: "مقدمة في الاستشراف", PriceHalalas: 0}
			})

			It("should grant immediately without calling the gateway", func() {
				// When
				resp, err := service.Initiate(ctx, 42, &checkout.InitiateRequest{ItemType: "course", ItemID: 8})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(resp.Status).To(Equal("paid"))
				Expect(resp.PaymentURL).To(BeEmpty())
				Expect(gatewayClient.invoiceCalls).To(Equal(0))
				Expect(gatewayClient.chargeCalls).To(Equal(0))
				Expect(granter.granted).To(HaveLen(1))
				Expect(txRepo.transactions[resp.TransactionID].Status).To(Equal("paid"))
			})

			It("should still report success when the grant fails", func() {
				// Given
				granter.grantError = errors.New("datastore down")

				// When
				resp, err := service.Initiate(ctx, 42, &checkout.InitiateRequest{ItemType: "course", ItemID: 8})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(resp.Status).To(Equal("paid"))
				Expect(txRepo.transactions[resp.TransactionID].Status).To(Equal("paid"))
			})
		})

		Context("when the gateway rejects the invoice", func() {
			BeforeEach(func() {
				catalog.courses[7] = &catalogdm.Course{ID: 7, TitleAr: "دورة", PriceHalalas: 19_900}
			})

			It("should mark the transaction failed and return the error", func() {
				// Given
				gatewayClient.invoiceError = internal.NewGatewayError("gateway unreachable", errors.New("connection refused"))

				// When
				resp, err := service.Initiate(ctx, 42, &checkout.InitiateRequest{ItemType: "course", ItemID: 7})

				// Then
				Expect(err).To(HaveOccurred())
				Expect(resp).To(BeNil())
				Expect(txRepo.transactions).To(HaveLen(1))
				for _, stored := range txRepo.transactions {
					Expect(stored.Status).To(Equal("failed"))
					Expect(stored.FailureReason).ToNot(BeNil())
				}
			})
		})

		Context("when booking a consultation", func() {
			It("should use the quoted amount and a default Arabic name", func() {
				// When
				resp, err := service.Initiate(ctx, 42, &checkout.InitiateRequest{ItemType: "consultation", ItemID: 5, Amount: 30_000})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(resp.AmountHalalas).To(Equal(int64(30_000)))
				Expect(txRepo.transactions[resp.TransactionID].ItemName).To(Equal("استشارة"))
			})
		})

		Context("when subscribing", func() {
			It("should price the monthly plan server side", func() {
				// When
				resp, err := service.Initiate(ctx, 42, &checkout.InitiateRequest{ItemType: "subscription", ItemID: 1})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(resp.AmountHalalas).To(Equal(int64(9_900)))
			})

			It("should price the yearly plan server side", func() {
				// When
				resp, err := service.Initiate(ctx, 42, &checkout.InitiateRequest{ItemType: "subscription", ItemID: 2})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(resp.AmountHalalas).To(Equal(int64(99_900)))
			})

			It("should reject an unknown plan id", func() {
				// When
				resp, err := service.Initiate(ctx, 42, &checkout.InitiateRequest{ItemType: "subscription", ItemID: 9})

				// Then
				Expect(err).To(HaveOccurred())
				Expect(resp).To(BeNil())
				Expect(txRepo.transactions).To(BeEmpty())
			})
		})

		Context("when the item does not exist", func() {
			It("should return course not found", func() {
				// When
				resp, err := service.Initiate(ctx, 42, &checkout.InitiateRequest{ItemType: "course", ItemID: 999})

				// Then
				Expect(err).To(MatchError(internal.ErrCourseNotFound))
				Expect(resp).To(BeNil())
			})

			It("should return book not found", func() {
				// When
				resp, err := service.Initiate(ctx, 42, &checkout.InitiateRequest{ItemType: "book", ItemID: 999})

				// Then
				Expect(err).To(MatchError(internal.ErrBookNotFound))
				Expect(resp).To(BeNil())
			})
		})

		Context("when the request is invalid", func() {
			It("should reject an unknown item type before touching storage", func() {
				// When
				resp, err := service.Initiate(ctx, 42, &checkout.InitiateRequest{ItemType: "gadget", ItemID: 1})

				// Then
				Expect(err).To(HaveOccurred())
				Expect(resp).To(BeNil())
				Expect(txRepo.transactions).To(BeEmpty())
			})

			It("should reject a negative consultation amount", func() {
				// When
				resp, err := service.Initiate(ctx, 42, &checkout.InitiateRequest{ItemType: "consultation", ItemID: 5, Amount: -100})

				// Then
				Expect(err).To(HaveOccurred())
				Expect(resp).To(BeNil())
			})
		})
	})
})
