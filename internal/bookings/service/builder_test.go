package service

import (
	"testing"

	"petsitter/pkg/calendar"
	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = calendar.MustParseDay

func testSitter() *model.SitterSummary {
	return &model.SitterSummary{
		ID:   "sitter-1",
		Name: "Ana",
		Services: map[string]model.ServiceOffer{
			model.ServiceBoarding:     {Active: true, Label: "Boarding", DailyPrice: 25, WeeklyPrice: 150},
			model.ServiceDogWalking:   {Active: false, Label: "Dog walking", DailyPrice: 10},
			model.ServiceHouseSitting: {Active: true, Label: "House sitting", DailyPrice: 32.5},
		},
	}
}

func testPets() []model.Pet {
	return []model.Pet{
		{ID: "p1", OwnerID: "owner-1", Name: "Rex", Species: "Dog"},
		{ID: "p2", OwnerID: "owner-1", Name: "Milo", Species: "dog "},
		{ID: "p3", OwnerID: "owner-1", Name: "Tom", Species: "Cat"},
	}
}

func validInput() *model.BookingInput {
	return &model.BookingInput{
		SitterID:    "sitter-1",
		StartDate:   day("2025-03-10"),
		EndDate:     day("2025-03-12"),
		ServiceType: model.ServiceBoarding,
		PetIDs:      []string{"p1"},
	}
}

func TestBuildRequest(t *testing.T) {
	in := validInput()
	in.PetIDs = []string{"p1", "p2", "p3", "p1"}
	in.SpecialInstructions = "  Feed   twice a day "

	b, err := BuildRequest("owner-1", in, testSitter(), testPets())
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, "owner-1", b.OwnerID)
	assert.Equal(t, "sitter-1", b.SitterID)
	assert.Equal(t, 3, b.DurationDays)
	require.NotNil(t, b.TotalPrice)
	assert.Equal(t, 75.0, *b.TotalPrice)
	assert.Equal(t, 25.0, b.DailyPrice)
	assert.Equal(t, "Boarding", b.ServiceLabel)
	assert.Equal(t, []string{"p1", "p2", "p3"}, b.PetIDs)
	assert.Equal(t, []string{"dog", "cat"}, b.Species)
	assert.Equal(t, "Feed twice a day", b.SpecialInstructions)
}

func TestBuildRequestSingleDay(t *testing.T) {
	in := validInput()
	in.ServiceType = model.ServiceHouseSitting
	in.StartDate = day("2025-03-10")
	in.EndDate = day("2025-03-10")

	b, err := BuildRequest("owner-1", in, testSitter(), testPets())
	require.NoError(t, err)
	assert.Equal(t, 1, b.DurationDays)
	require.NotNil(t, b.TotalPrice)
	assert.Equal(t, 32.5, *b.TotalPrice)
}

func TestBuildRequestNormalizesServiceType(t *testing.T) {
	in := validInput()
	in.ServiceType = " House Sitting"

	b, err := BuildRequest("owner-1", in, testSitter(), testPets())
	require.NoError(t, err)
	assert.Equal(t, model.ServiceHouseSitting, b.ServiceType)
	assert.Equal(t, 32.5, b.DailyPrice)
}

func TestBuildRequestErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(in *model.BookingInput)
		pets     []model.Pet
		wantCode string
		wantKey  string
	}{
		{
			name:     "missing start",
			mutate:   func(in *model.BookingInput) { in.StartDate = calendar.Day{} },
			wantCode: apperrors.CodeValidation,
			wantKey:  "start_date",
		},
		{
			name:     "missing end",
			mutate:   func(in *model.BookingInput) { in.EndDate = calendar.Day{} },
			wantCode: apperrors.CodeValidation,
			wantKey:  "end_date",
		},
		{
			name:     "inverted range",
			mutate:   func(in *model.BookingInput) { in.EndDate = day("2025-03-09") },
			wantCode: apperrors.CodeValidation,
			wantKey:  "end_date",
		},
		{
			name:     "missing service",
			mutate:   func(in *model.BookingInput) { in.ServiceType = "" },
			wantCode: apperrors.CodeValidation,
			wantKey:  "service_type",
		},
		{
			name:     "inactive service",
			mutate:   func(in *model.BookingInput) { in.ServiceType = model.ServiceDogWalking },
			wantCode: apperrors.CodeValidation,
			wantKey:  "service_type",
		},
		{
			name:     "unknown service",
			mutate:   func(in *model.BookingInput) { in.ServiceType = model.ServiceDayCare },
			wantCode: apperrors.CodeValidation,
			wantKey:  "service_type",
		},
		{
			name:     "no pets registered",
			mutate:   func(in *model.BookingInput) {},
			pets:     []model.Pet{},
			wantCode: apperrors.CodeNoPetsRegistered,
		},
		{
			name:     "no pet selected",
			mutate:   func(in *model.BookingInput) { in.PetIDs = []string{" "} },
			wantCode: apperrors.CodeValidation,
			wantKey:  "pet_ids",
		},
		{
			name:     "pet not owned",
			mutate:   func(in *model.BookingInput) { in.PetIDs = []string{"p1", "stranger"} },
			wantCode: apperrors.CodeValidation,
			wantKey:  "pet_id",
		},
		{
			name:   "pet listed for another owner",
			mutate: func(in *model.BookingInput) { in.PetIDs = []string{"p9"} },
			pets: append(testPets(), model.Pet{
				ID: "p9", OwnerID: "owner-2", Species: "cat",
			}),
			wantCode: apperrors.CodeValidation,
			wantKey:  "pet_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)
			pets := tt.pets
			if pets == nil {
				pets = testPets()
			}

			b, err := BuildRequest("owner-1", in, testSitter(), pets)
			require.Error(t, err)
			assert.Nil(t, b)

			appErr := apperrors.AsAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantCode, appErr.Code)
			if tt.wantKey != "" {
				assert.Contains(t, appErr.Details, tt.wantKey)
			}
		})
	}
}

func TestBuildRequestNoPetsIsNotValidation(t *testing.T) {
	in := validInput()
	in.PetIDs = nil

	_, err := BuildRequest("owner-1", in, testSitter(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNoPetsRegistered))
	assert.False(t, apperrors.HasCode(err, apperrors.CodeValidation))
}
