package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AndreiCalugar/FertiHub/internal/db"
	"github.com/AndreiCalugar/FertiHub/internal/models"
)

// ErrSupplierNotFound is returned when a supplier ID resolves to nothing.
var ErrSupplierNotFound = errors.New("supplier not found")

// SupplierInput carries the editable supplier fields.
type SupplierInput struct {
	Name          string  `json:"name" binding:"required"`
	Email         string  `json:"email" binding:"required,email"`
	ContactPerson *string `json:"contact_person"`
	Phone         *string `json:"phone"`
	Website       *string `json:"website"`
	IsVerified    bool    `json:"is_verified"`
	Notes         *string `json:"notes"`
}

// ISupplierService defines the interface for supplier catalog operations.
type ISupplierService interface {
	Create(ctx context.Context, userID string, input *SupplierInput) (*models.Supplier, error)
	List(ctx context.Context, search string) ([]models.Supplier, error)
	GetByID(ctx context.Context, supplierID string) (*models.Supplier, error)
	GetByIDs(ctx context.Context, supplierIDs []string) ([]models.Supplier, error)
	Update(ctx context.Context, supplierID, userID string, input *SupplierInput) (*models.Supplier, error)
	Delete(ctx context.Context, supplierID, userID string) error
}

const suppliersCollection = "suppliers"

type supplierService struct {
	db *mongo.Database
}

// NewSupplierService creates a new SupplierService.
func NewSupplierService(db *mongo.Database) ISupplierService {
	return &supplierService{db: db}
}

func (s *supplierService) Create(ctx context.Context, userID string, input *SupplierInput) (*models.Supplier, error) {
	now := time.Now().UTC()
	doc, err := db.InsertOne(ctx, s.db.Collection(suppliersCollection), &models.Supplier{
		Name:          input.Name,
		Email:         input.Email,
		ContactPerson: input.ContactPerson,
		Phone:         input.Phone,
		Website:       input.Website,
		IsVerified:    input.IsVerified,
		Notes:         input.Notes,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	return doc.(*models.Supplier), nil
}

// List returns the supplier catalog, newest first. A non-empty search term is
// matched case-insensitively against the name.
func (s *supplierService) List(ctx context.Context, search string) ([]models.Supplier, error) {
	filter := bson.M{}
	if search != "" {
		filter["name"] = bson.M{"$regex": search, "$options": "i"}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(suppliersCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	defer cursor.Close(ctx)

	suppliers := []models.Supplier{}
	if err := cursor.All(ctx, &suppliers); err != nil {
		return nil, fmt.Errorf("failed to decode suppliers: %w", err)
	}
	return suppliers, nil
}

func (s *supplierService) GetByID(ctx context.Context, supplierID string) (*models.Supplier, error) {
	var supplier models.Supplier
	err := s.db.Collection(suppliersCollection).FindOne(ctx, bson.M{"_id": supplierID}).Decode(&supplier)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to find supplier %s: %w", supplierID, err)
	}
	return &supplier, nil
}

func (s *supplierService) GetByIDs(ctx context.Context, supplierIDs []string) ([]models.Supplier, error) {
	if len(supplierIDs) == 0 {
		return []models.Supplier{}, nil
	}
	cursor, err := s.db.Collection(suppliersCollection).Find(ctx, bson.M{"_id": bson.M{"$in": supplierIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find suppliers: %w", err)
	}
	defer cursor.Close(ctx)

	suppliers := []models.Supplier{}
	if err := cursor.All(ctx, &suppliers); err != nil {
		return nil, fmt.Errorf("failed to decode suppliers: %w", err)
	}
	return suppliers, nil
}

// Update modifies a supplier added by this user. Shared verified suppliers
// are read-only to regular users.
func (s *supplierService) Update(ctx context.Context, supplierID, userID string, input *SupplierInput) (*models.Supplier, error) {
	update := bson.M{"$set": bson.M{
		"name":           input.Name,
		"email":          input.Email,
		"contact_person": input.ContactPerson,
		"phone":          input.Phone,
		"website":        input.Website,
		"notes":          input.Notes,
		"updated_at":     time.Now().UTC(),
	}}

	res, err := s.db.Collection(suppliersCollection).UpdateOne(ctx,
		bson.M{"_id": supplierID, "created_by": userID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update supplier %s: %w", supplierID, err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrSupplierNotFound
	}
	return s.GetByID(ctx, supplierID)
}

func (s *supplierService) Delete(ctx context.Context, supplierID, userID string) error {
	res, err := s.db.Collection(suppliersCollection).DeleteOne(ctx,
		bson.M{"_id": supplierID, "created_by": userID})
	if err != nil {
		return fmt.Errorf("failed to delete supplier %s: %w", supplierID, err)
	}
	if res.DeletedCount == 0 {
		return ErrSupplierNotFound
	}
	return nil
}
