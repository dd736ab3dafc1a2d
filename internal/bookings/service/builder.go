package service

import (
	"math"

	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/model"
	"petsitter/pkg/sanitizer"
)

// BuildRequest turns an owner's input into a pending booking. The sitter must
// actively offer the requested service and every selected pet must belong to
// ownerID according to pets, the owner's registry listing.
func BuildRequest(ownerID string, in *model.BookingInput, sitter *model.SitterSummary, pets []model.Pet) (*model.Booking, error) {
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, apperrors.Validation("A date range is required", map[string]any{
			"start_date": in.StartDate.String(),
			"end_date":   in.EndDate.String(),
		})
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, apperrors.Validation("End date cannot be before start date", map[string]any{
			"start_date": in.StartDate.String(),
			"end_date":   in.EndDate.String(),
		})
	}

	serviceType := sanitizer.NormalizeKey(in.ServiceType)
	if serviceType == "" {
		return nil, apperrors.Validation("A service is required", map[string]any{"service_type": "required"})
	}
	offer, ok := sitter.ActiveService(serviceType)
	if !ok {
		return nil, apperrors.Validation("The sitter does not offer this service", map[string]any{"service_type": in.ServiceType})
	}

	if len(pets) == 0 {
		return nil, apperrors.NoPetsRegistered()
	}
	petIDs := sanitizer.NormalizeIDs(in.PetIDs)
	if len(petIDs) == 0 {
		return nil, apperrors.Validation("At least one pet must be selected", map[string]any{"pet_ids": "required"})
	}

	owned := make(map[string]model.Pet, len(pets))
	for _, p := range pets {
		if p.OwnerID == "" || p.OwnerID == ownerID {
			owned[p.ID] = p
		}
	}
	species := make([]string, 0, len(petIDs))
	seen := make(map[string]bool, len(petIDs))
	for _, id := range petIDs {
		pet, ok := owned[id]
		if !ok {
			return nil, apperrors.Validation("Selected pet is not registered to the owner", map[string]any{"pet_id": id})
		}
		if s := sanitizer.NormalizeLabel(pet.Species); s != "" && !seen[s] {
			seen[s] = true
			species = append(species, s)
		}
	}

	duration := in.EndDate.Sub(in.StartDate) + 1
	total := math.Round(float64(duration)*offer.DailyPrice*100) / 100

	return &model.Booking{
		OwnerID:             ownerID,
		SitterID:            sitter.ID,
		StartDate:           in.StartDate,
		EndDate:             in.EndDate,
		Status:              model.StatusPending,
		ServiceType:         serviceType,
		ServiceLabel:        offer.Label,
		DailyPrice:          offer.DailyPrice,
		DurationDays:        duration,
		TotalPrice:          &total,
		PetIDs:              petIDs,
		Species:             species,
		SpecialInstructions: sanitizer.NormalizeText(in.SpecialInstructions),
	}, nil
}
