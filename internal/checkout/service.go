package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/core/events"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/entitlement"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/gateway"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transaction"

	catalogdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/catalog"
	txdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/transaction"
)

// Subscription plan prices in halalas, keyed by plan item id.
const (
	monthlyPlanID    = 1
	yearlyPlanID     = 2
	monthlyPlanPrice = 9_900
	yearlyPlanPrice  = 99_900
)

type PriceCatalog interface {
	GetCourse(id int64) (*catalogdm.Course, error)
	GetBook(id int64) (*catalogdm.Book, error)
}

type ServiceAPI interface {
	Initiate(ctx context.Context, userID int64, req *InitiateRequest) (*InitiateResponse, error)
}

type Service struct {
	transactions   transaction.ServiceAPI
	granter        entitlement.ServiceAPI
	gateway        gateway.ClientAPI
	catalog        PriceCatalog
	eventBus       *events.EventBus
	publishableKey string
	callbackURL    string
	logger         *slog.Logger
}

func NewService(
	transactions transaction.ServiceAPI,
	granter entitlement.ServiceAPI,
	gatewayClient gateway.ClientAPI,
	catalog PriceCatalog,
	eventBus *events.EventBus,
	publishableKey string,
	callbackURL string,
	logger *slog.Logger,
) *Service {
	return &Service{
		transactions:   transactions,
		granter:        granter,
		gateway:        gatewayClient,
		catalog:        catalog,
		eventBus:       eventBus,
		publishableKey: publishableKey,
		callbackURL:    callbackURL,
		logger:         logger,
	}
}

// Initiate creates a pending transaction for the requested item. Free items
// are granted immediately without touching the gateway; everything else gets
// a gateway invoice for the hosted payment form.
func (s *Service) Initiate(ctx context.Context, userID int64, req *InitiateRequest) (*InitiateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	amount, itemName, err := s.resolveItem(req)
	if err != nil {
		return nil, err
	}

	t, err := s.transactions.CreatePending(userID, req.ItemType, req.ItemID, itemName, amount)
	if err != nil {
		return nil, err
	}

	if amount == 0 {
		return s.grantFree(ctx, t)
	}

	invoice, err := s.gateway.CreateInvoice(ctx, &gateway.InvoiceRequest{
		Amount:      amount,
		Description: itemName,
		CallbackURL: s.callbackURL,
		Metadata: map[string]string{
			"transaction_id": strconv.FormatInt(t.ID, 10),
			"external_id":    t.ExternalID,
		},
	})
	if err != nil {
		s.logger.Error("gateway invoice creation failed, failing transaction",
			"error", err,
			"transaction_id", t.ID)

		reason := "gateway invoice creation failed"
		if updateErr := s.transactions.ApplyGatewayStatus(t, txdm.StatusFailed, nil, nil, &reason); updateErr != nil {
			s.logger.Error("failed to mark transaction failed after gateway error",
				"error", updateErr,
				"transaction_id", t.ID)
		}
		return nil, err
	}

	if err := s.transactions.AttachGatewayID(t.ID, invoice.ID); err != nil {
		s.logger.Error("failed to record invoice id", "error", err, "transaction_id", t.ID, "invoice_id", invoice.ID)
	}

	s.logger.Info("checkout initiated",
		"transaction_id", t.ID,
		"user_id", userID,
		"item_type", req.ItemType,
		"amount", amount,
		"invoice_id", invoice.ID)

	return &InitiateResponse{
		TransactionID:  t.ID,
		ExternalID:     t.ExternalID,
		Status:         t.Status,
		AmountHalalas:  amount,
		Currency:       t.Currency,
		PaymentURL:     invoice.URL,
		PublishableKey: s.publishableKey,
	}, nil
}

func (s *Service) grantFree(ctx context.Context, t *txdm.Transaction) (*InitiateResponse, error) {
	if err := s.transactions.ApplyGatewayStatus(t, txdm.StatusPaid, nil, nil, nil); err != nil {
		return nil, err
	}

	if err := s.granter.GrantForTransaction(ctx, t); err != nil {
		// Status is already written; same contract as the webhook path.
		s.logger.Error("entitlement grant failed for free item",
			"error", err,
			"transaction_id", t.ID,
			"item_type", t.ItemType)
	}

	if s.eventBus != nil {
		event := events.NewTransactionPaidEvent(t.ID, t.UserID, t.ItemType, t.ItemID, t.ItemName, 0, t.ExternalID)
		s.eventBus.Publish(ctx, event)
	}

	s.logger.Info("free item granted without gateway",
		"transaction_id", t.ID,
		"user_id", t.UserID,
		"item_type", t.ItemType)

	return &InitiateResponse{
		TransactionID: t.ID,
		ExternalID:    t.ExternalID,
		Status:        txdm.StatusPaid,
		AmountHalalas: 0,
		Currency:      t.Currency,
	}, nil
}

func (s *Service) resolveItem(req *InitiateRequest) (int64, string, error) {
	switch req.ItemType {
	case txdm.ItemTypeCourse:
		course, err := s.catalog.GetCourse(req.ItemID)
		if err != nil {
			return 0, "", internal.ErrCourseNotFound
		}
		return course.PriceHalalas, course.TitleAr, nil

	case txdm.ItemTypeBook:
		book, err := s.catalog.GetBook(req.ItemID)
		if err != nil {
			return 0, "", internal.ErrBookNotFound
		}
		return book.PriceHalalas, book.TitleAr, nil

	case txdm.ItemTypeConsultation:
		name := req.ItemName
		if name == "" {
			name = "استشارة"
		}
		return req.Amount, name, nil

	case txdm.ItemTypeSubscription:
		switch req.ItemID {
		case monthlyPlanID:
			return monthlyPlanPrice, "اشتراك شهري", nil
		case yearlyPlanID:
			return yearlyPlanPrice, "اشتراك سنوي", nil
		default:
			return 0, "", internal.NewValidationError(fmt.Sprintf("unknown subscription plan: %d", req.ItemID), internal.ErrCodeValidationFailed)
		}
	}

	return 0, "", internal.NewValidationError("unknown item type", internal.ErrCodeInvalidItemType)
}
