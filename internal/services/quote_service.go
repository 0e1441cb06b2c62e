package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AndreiCalugar/FertiHub/internal/config"
	"github.com/AndreiCalugar/FertiHub/internal/db"
	"github.com/AndreiCalugar/FertiHub/internal/email"
	"github.com/AndreiCalugar/FertiHub/internal/models"
)

// ErrQuoteNotFound is returned when a quote ID resolves to nothing.
var ErrQuoteNotFound = errors.New("quote not found")

// QuoteInput carries the fields for recording a quote against an inquiry.
type QuoteInput struct {
	InquiryID       string   `json:"inquiry_id" binding:"required"`
	SupplierID      string   `json:"supplier_id" binding:"required"`
	ProductName     string   `json:"product_name" binding:"required"`
	UnitPrice       *float64 `json:"unit_price"`
	TotalPrice      float64  `json:"total_price" binding:"required"`
	Currency        string   `json:"currency"`
	LeadTimeDays    *int     `json:"lead_time_days"`
	ValidityPeriod  *string  `json:"validity_period"`
	Notes           *string  `json:"notes"`
	PdfURL          *string  `json:"pdf_url"`
	AIExtracted     bool     `json:"ai_extracted"`
	ConfidenceScore *float64 `json:"confidence_score"`
}

// IQuoteService defines the interface for quote operations.
type IQuoteService interface {
	Create(ctx context.Context, userID string, input *QuoteInput) (*models.Quote, error)
	ListByInquiry(ctx context.Context, inquiryID, userID string) ([]models.Quote, error)
	ListForInquiry(ctx context.Context, inquiryID string) ([]models.Quote, error)
	Delete(ctx context.Context, quoteID, userID string) error
}

type quoteService struct {
	db                  *mongo.Database
	cfg                 *config.Config
	inquiryService      IInquiryService
	supplierService     ISupplierService
	notificationService INotificationService
	profileService      IProfileService
	enqueuer            ITaskEnqueuer
}

// NewQuoteService creates a new QuoteService. The enqueuer may be nil, in
// which case quote-received emails are skipped (notifications still land).
func NewQuoteService(db *mongo.Database, cfg *config.Config, inquiryService IInquiryService,
	supplierService ISupplierService, notificationService INotificationService,
	profileService IProfileService, enqueuer ITaskEnqueuer) IQuoteService {
	return &quoteService{
		db:                  db,
		cfg:                 cfg,
		inquiryService:      inquiryService,
		supplierService:     supplierService,
		notificationService: notificationService,
		profileService:      profileService,
		enqueuer:            enqueuer,
	}
}

// Create records a quote for an inquiry the caller owns, flips the matching
// contact to responded, and notifies the owner in-app and by email. The
// completion re-evaluation happens in the engagement service afterwards.
func (s *quoteService) Create(ctx context.Context, userID string, input *QuoteInput) (*models.Quote, error) {
	inquiry, err := s.inquiryService.GetOwned(ctx, input.InquiryID, userID)
	if err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	now := time.Now().UTC()
	doc, err := db.InsertOne(ctx, s.db.Collection(quotesCollection), &models.Quote{
		InquiryID:       input.InquiryID,
		SupplierID:      input.SupplierID,
		ProductName:     input.ProductName,
		UnitPrice:       input.UnitPrice,
		TotalPrice:      input.TotalPrice,
		Currency:        currency,
		LeadTimeDays:    input.LeadTimeDays,
		ValidityPeriod:  input.ValidityPeriod,
		Notes:           input.Notes,
		PdfURL:          input.PdfURL,
		AIExtracted:     input.AIExtracted,
		ConfidenceScore: input.ConfidenceScore,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}
	quote := doc.(*models.Quote)

	if err := s.inquiryService.MarkContactResponded(ctx, input.InquiryID, input.SupplierID); err != nil {
		log.Printf("Failed to mark contact responded for inquiry %s supplier %s: %v",
			input.InquiryID, input.SupplierID, err)
	}

	supplierName := input.SupplierID
	if supplier, err := s.supplierService.GetByID(ctx, input.SupplierID); err == nil {
		supplierName = supplier.Name
	}

	_, err = s.notificationService.Create(ctx, userID, models.NotificationQuoteReceived,
		"New Quote Received",
		fmt.Sprintf("%s submitted a quote for %s", supplierName, inquiry.ProductDescription),
		&input.InquiryID)
	if err != nil {
		log.Printf("Failed to create quote_received notification for inquiry %s: %v", input.InquiryID, err)
	}

	s.sendQuoteReceivedEmail(ctx, userID, quote, supplierName)
	return quote, nil
}

func (s *quoteService) sendQuoteReceivedEmail(ctx context.Context, userID string, quote *models.Quote, supplierName string) {
	if s.enqueuer == nil {
		return
	}
	owner, err := s.profileService.GetByID(ctx, userID)
	if err != nil {
		log.Printf("Failed to load owner profile %s for quote email: %v", userID, err)
		return
	}

	msg := email.QuoteReceivedEmail(email.QuoteReceivedEmailData{
		OrganizationName: owner.OrganizationName,
		SupplierName:     supplierName,
		ProductName:      quote.ProductName,
		TotalPrice:       quote.TotalPrice,
		Currency:         quote.Currency,
		InquiryID:        quote.InquiryID,
		DashboardURL:     fmt.Sprintf("%s/inquiries/%s", s.cfg.AppBaseURL, quote.InquiryID),
	})
	msg.To = []string{owner.Email}
	if err := s.enqueuer.EnqueueEmail(ctx, msg); err != nil {
		log.Printf("Failed to enqueue quote_received email for inquiry %s: %v", quote.InquiryID, err)
	}
}

// ListByInquiry returns an inquiry's quotes after verifying ownership.
func (s *quoteService) ListByInquiry(ctx context.Context, inquiryID, userID string) ([]models.Quote, error) {
	if _, err := s.inquiryService.GetOwned(ctx, inquiryID, userID); err != nil {
		return nil, err
	}
	return s.ListForInquiry(ctx, inquiryID)
}

// ListForInquiry returns an inquiry's quotes without an ownership check, for
// internal callers that already hold the inquiry.
func (s *quoteService) ListForInquiry(ctx context.Context, inquiryID string) ([]models.Quote, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.db.Collection(quotesCollection).Find(ctx, bson.M{"inquiry_id": inquiryID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes for inquiry %s: %w", inquiryID, err)
	}
	defer cursor.Close(ctx)

	quotes := []models.Quote{}
	if err := cursor.All(ctx, &quotes); err != nil {
		return nil, fmt.Errorf("failed to decode quotes: %w", err)
	}
	return quotes, nil
}

// Delete removes a quote belonging to one of the caller's inquiries.
func (s *quoteService) Delete(ctx context.Context, quoteID, userID string) error {
	var quote models.Quote
	err := s.db.Collection(quotesCollection).FindOne(ctx, bson.M{"_id": quoteID}).Decode(&quote)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrQuoteNotFound
		}
		return fmt.Errorf("failed to find quote %s: %w", quoteID, err)
	}
	if _, err := s.inquiryService.GetOwned(ctx, quote.InquiryID, userID); err != nil {
		return ErrQuoteNotFound
	}

	if _, err := s.db.Collection(quotesCollection).DeleteOne(ctx, bson.M{"_id": quoteID}); err != nil {
		return fmt.Errorf("failed to delete quote %s: %w", quoteID, err)
	}
	return nil
}
