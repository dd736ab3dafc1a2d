package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"petsitter/pkg/model"
)

// PetRegistryClient reads an owner's pets from the pet registry service.
type PetRegistryClient struct {
	httpClient *HttpClient
}

func NewPetRegistryClient(baseURL string, timeout time.Duration) *PetRegistryClient {
	return &PetRegistryClient{httpClient: NewHttpClient(baseURL, timeout)}
}

// ListPets returns every pet registered to ownerID. An owner with no pets
// yields an empty slice and no error; transport and server failures are errors.
func (c *PetRegistryClient) ListPets(ctx context.Context, ownerID string) ([]model.Pet, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/owners/"+url.PathEscape(ownerID)+"/pets")
	if err != nil {
		return nil, fmt.Errorf("pet registry: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("pet registry: status %d: %s", resp.StatusCode, GetErrorMessage(resp))
	}

	var body struct {
		Data []model.Pet `json:"data"`
	}
	if err := resp.DecodeJSON(&body); err != nil {
		return nil, fmt.Errorf("pet registry: decode response: %w", err)
	}
	if body.Data == nil {
		return []model.Pet{}, nil
	}
	return body.Data, nil
}
