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

	"github.com/AndreiCalugar/FertiHub/internal/db"
	"github.com/AndreiCalugar/FertiHub/internal/models"
)

var (
	// ErrInquiryNotFound is returned when an inquiry ID resolves to nothing,
	// or belongs to another user where ownership is required.
	ErrInquiryNotFound = errors.New("inquiry not found")
	// ErrNoSuppliers is returned when an inquiry is created without any
	// resolvable supplier.
	ErrNoSuppliers = errors.New("inquiry needs at least one supplier")
	// ErrContactNotFound is returned when a contact row resolves to nothing.
	ErrContactNotFound = errors.New("inquiry contact not found")
)

// InquiryInput carries the fields for creating an inquiry.
type InquiryInput struct {
	ProductCategoryID  *string    `json:"product_category_id"`
	ProductDescription string     `json:"product_description" binding:"required"`
	Quantity           int        `json:"quantity" binding:"required,min=1"`
	UrgencyLevel       int        `json:"urgency_level" binding:"required,min=1,max=5"`
	Notes              *string    `json:"notes"`
	AttachmentURL      *string    `json:"attachment_url"`
	Deadline           *time.Time `json:"deadline"`
	SupplierIDs        []string   `json:"supplier_ids" binding:"required,min=1"`
}

// InquiryDetail is an inquiry with its contact rows joined to suppliers.
type InquiryDetail struct {
	Inquiry  models.Inquiry               `json:"inquiry"`
	Contacts []models.ContactWithSupplier `json:"contacts"`
}

// IInquiryService defines the interface for inquiry and contact operations.
type IInquiryService interface {
	Create(ctx context.Context, userID string, input *InquiryInput) (*models.Inquiry, error)
	List(ctx context.Context, userID string) ([]models.Inquiry, error)
	GetOwned(ctx context.Context, inquiryID, userID string) (*models.Inquiry, error)
	GetDetail(ctx context.Context, inquiryID, userID string) (*InquiryDetail, error)
	Delete(ctx context.Context, inquiryID, userID string) error
	SetStatus(ctx context.Context, inquiryID string, status models.InquiryStatus) error

	// Contact queries used by the dispatcher and the quote flow.
	ListEngagable(ctx context.Context) ([]models.Inquiry, error)
	ListWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]models.Inquiry, error)
	ContactsForInquiry(ctx context.Context, inquiryID string) ([]models.ContactWithSupplier, error)
	CountContacts(ctx context.Context, inquiryID string) (int64, error)
	MarkContactEmailSent(ctx context.Context, contactID string, at time.Time) error
	MarkContactEmailFailed(ctx context.Context, contactID string) error
	MarkContactFollowedUp(ctx context.Context, contactID string, at time.Time) error
	MarkContactUndeliverable(ctx context.Context, contactID string) error
	MarkContactResponded(ctx context.Context, inquiryID, supplierID string) error

	CategoryName(ctx context.Context, categoryID *string) string
}

const (
	inquiriesCollection         = "inquiries"
	inquirySuppliersCollection  = "inquiry_suppliers"
	quotesCollection            = "quotes"
	productCategoriesCollection = "product_categories"
)

type inquiryService struct {
	db              *mongo.Database
	supplierService ISupplierService
}

// NewInquiryService creates a new InquiryService.
func NewInquiryService(db *mongo.Database, supplierService ISupplierService) IInquiryService {
	return &inquiryService{db: db, supplierService: supplierService}
}

// Create inserts the inquiry in draft state plus one contact row per
// resolvable supplier. Supplier IDs that match nothing are dropped; an input
// that resolves to zero suppliers is rejected.
func (s *inquiryService) Create(ctx context.Context, userID string, input *InquiryInput) (*models.Inquiry, error) {
	suppliers, err := s.supplierService.GetByIDs(ctx, dedupeStrings(input.SupplierIDs))
	if err != nil {
		return nil, err
	}
	if len(suppliers) == 0 {
		return nil, ErrNoSuppliers
	}

	now := time.Now().UTC()
	doc, err := db.InsertOne(ctx, s.db.Collection(inquiriesCollection), &models.Inquiry{
		UserID:             userID,
		ProductCategoryID:  input.ProductCategoryID,
		ProductDescription: input.ProductDescription,
		Quantity:           input.Quantity,
		UrgencyLevel:       input.UrgencyLevel,
		Status:             models.InquiryStatusDraft,
		Notes:              input.Notes,
		AttachmentURL:      input.AttachmentURL,
		Deadline:           input.Deadline,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create inquiry: %w", err)
	}
	inquiry := doc.(*models.Inquiry)

	for _, supplier := range suppliers {
		_, err := db.InsertOne(ctx, s.db.Collection(inquirySuppliersCollection), &models.InquirySupplier{
			InquiryID:   inquiry.ID,
			SupplierID:  supplier.ID,
			EmailStatus: models.EmailStatusPending,
			CreatedAt:   now,
		})
		if err != nil {
			// The unique (inquiry_id, supplier_id) index absorbs duplicates.
			if db.IsMongoDuplicateKeyError(err) {
				continue
			}
			return nil, fmt.Errorf("failed to create contact for supplier %s: %w", supplier.ID, err)
		}
	}
	return inquiry, nil
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (s *inquiryService) List(ctx context.Context, userID string) ([]models.Inquiry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(inquiriesCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}
	defer cursor.Close(ctx)

	inquiries := []models.Inquiry{}
	if err := cursor.All(ctx, &inquiries); err != nil {
		return nil, fmt.Errorf("failed to decode inquiries: %w", err)
	}
	return inquiries, nil
}

// GetOwned fetches an inquiry and enforces ownership. A foreign inquiry is
// indistinguishable from a missing one on purpose.
func (s *inquiryService) GetOwned(ctx context.Context, inquiryID, userID string) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	err := s.db.Collection(inquiriesCollection).FindOne(ctx,
		bson.M{"_id": inquiryID, "user_id": userID}).Decode(&inquiry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInquiryNotFound
		}
		return nil, fmt.Errorf("failed to find inquiry %s: %w", inquiryID, err)
	}
	return &inquiry, nil
}

func (s *inquiryService) GetDetail(ctx context.Context, inquiryID, userID string) (*InquiryDetail, error) {
	inquiry, err := s.GetOwned(ctx, inquiryID, userID)
	if err != nil {
		return nil, err
	}
	contacts, err := s.ContactsForInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	return &InquiryDetail{Inquiry: *inquiry, Contacts: contacts}, nil
}

// Delete removes the inquiry and cascades over its contacts, quotes and
// notifications. Partial cascade failures are logged, not raised: the inquiry
// row is already gone and orphans are harmless.
func (s *inquiryService) Delete(ctx context.Context, inquiryID, userID string) error {
	res, err := s.db.Collection(inquiriesCollection).DeleteOne(ctx,
		bson.M{"_id": inquiryID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete inquiry %s: %w", inquiryID, err)
	}
	if res.DeletedCount == 0 {
		return ErrInquiryNotFound
	}

	filter := bson.M{"inquiry_id": inquiryID}
	for _, coll := range []string{inquirySuppliersCollection, quotesCollection, notificationsCollection} {
		if _, err := s.db.Collection(coll).DeleteMany(ctx, filter); err != nil {
			log.Printf("Cascade delete of %s for inquiry %s failed: %v", coll, inquiryID, err)
		}
	}
	return nil
}

func (s *inquiryService) SetStatus(ctx context.Context, inquiryID string, status models.InquiryStatus) error {
	res, err := s.db.Collection(inquiriesCollection).UpdateOne(ctx,
		bson.M{"_id": inquiryID},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("failed to set inquiry %s status: %w", inquiryID, err)
	}
	if res.MatchedCount == 0 {
		return ErrInquiryNotFound
	}
	return nil
}

// ListEngagable returns every inquiry the follow-up dispatcher should scan:
// sent or partially quoted, regardless of owner.
func (s *inquiryService) ListEngagable(ctx context.Context) ([]models.Inquiry, error) {
	cursor, err := s.db.Collection(inquiriesCollection).Find(ctx,
		bson.M{"status": bson.M{"$in": models.EngagableStatuses()}})
	if err != nil {
		return nil, fmt.Errorf("failed to list engagable inquiries: %w", err)
	}
	defer cursor.Close(ctx)

	inquiries := []models.Inquiry{}
	if err := cursor.All(ctx, &inquiries); err != nil {
		return nil, fmt.Errorf("failed to decode inquiries: %w", err)
	}
	return inquiries, nil
}

// ListWithDeadlineBetween returns engagable inquiries whose deadline falls in
// [from, to), for the deadline-reminder pass.
func (s *inquiryService) ListWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]models.Inquiry, error) {
	cursor, err := s.db.Collection(inquiriesCollection).Find(ctx, bson.M{
		"status":   bson.M{"$in": models.EngagableStatuses()},
		"deadline": bson.M{"$gte": from, "$lt": to},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list inquiries by deadline: %w", err)
	}
	defer cursor.Close(ctx)

	inquiries := []models.Inquiry{}
	if err := cursor.All(ctx, &inquiries); err != nil {
		return nil, fmt.Errorf("failed to decode inquiries: %w", err)
	}
	return inquiries, nil
}

// ContactsForInquiry joins each contact row with its supplier record. A
// contact whose supplier was deleted comes back with a zero-value supplier;
// the dispatcher treats its empty email as undeliverable.
func (s *inquiryService) ContactsForInquiry(ctx context.Context, inquiryID string) ([]models.ContactWithSupplier, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"inquiry_id": inquiryID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         suppliersCollection,
			"localField":   "supplier_id",
			"foreignField": "_id",
			"as":           "supplier_doc",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$supplier_doc", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{"contact": "$$ROOT", "supplier": "$supplier_doc"}}},
	}

	cursor, err := s.db.Collection(inquirySuppliersCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to join contacts for inquiry %s: %w", inquiryID, err)
	}
	defer cursor.Close(ctx)

	contacts := []models.ContactWithSupplier{}
	if err := cursor.All(ctx, &contacts); err != nil {
		return nil, fmt.Errorf("failed to decode contacts: %w", err)
	}
	return contacts, nil
}

func (s *inquiryService) CountContacts(ctx context.Context, inquiryID string) (int64, error) {
	count, err := s.db.Collection(inquirySuppliersCollection).CountDocuments(ctx,
		bson.M{"inquiry_id": inquiryID})
	if err != nil {
		return 0, fmt.Errorf("failed to count contacts for inquiry %s: %w", inquiryID, err)
	}
	return count, nil
}

func (s *inquiryService) updateContact(ctx context.Context, filter, set bson.M) error {
	res, err := s.db.Collection(inquirySuppliersCollection).UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrContactNotFound
	}
	return nil
}

func (s *inquiryService) MarkContactEmailSent(ctx context.Context, contactID string, at time.Time) error {
	return s.updateContact(ctx, bson.M{"_id": contactID},
		bson.M{"email_sent_at": at, "email_status": models.EmailStatusSent})
}

func (s *inquiryService) MarkContactEmailFailed(ctx context.Context, contactID string) error {
	return s.updateContact(ctx, bson.M{"_id": contactID},
		bson.M{"email_status": models.EmailStatusFailed})
}

func (s *inquiryService) MarkContactFollowedUp(ctx context.Context, contactID string, at time.Time) error {
	return s.updateContact(ctx, bson.M{"_id": contactID},
		bson.M{"last_followed_up_at": at})
}

// MarkContactUndeliverable parks a contact permanently: the scheduler never
// selects undeliverable contacts again.
func (s *inquiryService) MarkContactUndeliverable(ctx context.Context, contactID string) error {
	return s.updateContact(ctx, bson.M{"_id": contactID},
		bson.M{"email_status": models.EmailStatusUndeliverable})
}

func (s *inquiryService) MarkContactResponded(ctx context.Context, inquiryID, supplierID string) error {
	err := s.updateContact(ctx,
		bson.M{"inquiry_id": inquiryID, "supplier_id": supplierID},
		bson.M{"response_received": true})
	if errors.Is(err, ErrContactNotFound) {
		// A quote can arrive from a supplier that was never contacted for
		// this inquiry (manual entry). Nothing to flip in that case.
		return nil
	}
	return err
}

// CategoryName resolves a product category ID to its display name. Returns
// the empty string when the ID is nil or unknown; email templates fall back
// to the product description.
func (s *inquiryService) CategoryName(ctx context.Context, categoryID *string) string {
	if categoryID == nil {
		return ""
	}
	var category models.ProductCategory
	err := s.db.Collection(productCategoriesCollection).FindOne(ctx, bson.M{"_id": *categoryID}).Decode(&category)
	if err != nil {
		return ""
	}
	return category.Name
}
