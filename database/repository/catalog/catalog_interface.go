package catalogRepo

import (
	"context"

	"bookly/models"
)

// CatalogRepository defines data access for services and the specialists owning them.
type CatalogRepository interface {
	CreateService(ctx context.Context, service *models.Service) error
	GetService(ctx context.Context, id string) (*models.Service, error)
	CreateSpecialist(ctx context.Context, specialist *models.Specialist) error
	GetSpecialist(ctx context.Context, id string) (*models.Specialist, error)
	// GetSpecialistByUserID resolves the specialist a user account acts for.
	GetSpecialistByUserID(ctx context.Context, userID string) (*models.Specialist, error)
	// IncrementCompletedBookings bumps the specialist's completed counter by one.
	IncrementCompletedBookings(ctx context.Context, specialistID string) error
}
