package memstore

import (
	"context"
	"strings"
	"sync"

	"agromart/db"
	"agromart/documents"
	"agromart/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Documents struct {
	mu       sync.Mutex
	sellers  []models.Seller
	profiles []models.FarmerProfile
}

func NewDocuments(sellers []models.Seller, profiles []models.FarmerProfile) *Documents {
	return &Documents{sellers: sellers, profiles: profiles}
}

func (d *Documents) FindSeller(_ context.Context, id string) (*models.Seller, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.sellers {
		if s.ID.Hex() == id {
			found := s
			found.Documents = append([]models.VerificationDocument(nil), s.Documents...)
			return &found, nil
		}
	}
	return nil, db.ErrNotFound
}

func (d *Documents) FindFarmerProfile(_ context.Context, userID string) (*models.FarmerProfile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.profiles {
		if p.UserID == userID || p.LegacyUser == userID {
			found := p
			found.Documents = append([]models.VerificationDocument(nil), p.Documents...)
			return &found, nil
		}
	}
	return nil, db.ErrNotFound
}

func (d *Documents) SetSellerDocument(_ context.Context, id primitive.ObjectID, docType string, dec documents.Decision) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.sellers {
		if d.sellers[i].ID == id {
			return apply(d.sellers[i].Documents, docType, dec)
		}
	}
	return db.ErrNotFound
}

func (d *Documents) SetFarmerDocument(_ context.Context, id primitive.ObjectID, docType string, dec documents.Decision) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.profiles {
		if d.profiles[i].ID == id {
			return apply(d.profiles[i].Documents, docType, dec)
		}
	}
	return db.ErrNotFound
}

// Seller returns the stored seller by id.
func (d *Documents) Seller(id primitive.ObjectID) models.Seller {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.sellers {
		if s.ID == id {
			return s
		}
	}
	return models.Seller{}
}

func (d *Documents) Profile(id primitive.ObjectID) models.FarmerProfile {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.profiles {
		if p.ID == id {
			return p
		}
	}
	return models.FarmerProfile{}
}

func apply(docs []models.VerificationDocument, docType string, dec documents.Decision) error {
	for i := range docs {
		if docs[i].Type != docType {
			continue
		}
		at := dec.ReviewedAt
		docs[i].Status = dec.Status
		docs[i].RejectionReason = dec.Reason
		docs[i].ReviewedBy = dec.ReviewedBy
		docs[i].ReviewedAt = &at
		return nil
	}
	return db.ErrNotFound
}

// FindByEmail lets Documents stand in for the supplier login store.
func (d *Documents) FindByEmail(_ context.Context, email string) (*models.Seller, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	want := strings.ToLower(strings.TrimSpace(email))
	for _, s := range d.sellers {
		if strings.ToLower(s.Email) == want {
			found := s
			return &found, nil
		}
	}
	return nil, db.ErrNotFound
}
