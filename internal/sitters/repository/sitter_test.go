package repository

import (
	"reflect"
	"testing"

	"petsitter/pkg/geo"

	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildFilter(t *testing.T) {
	box := geo.Box{MinLat: 50, MaxLat: 51, MinLon: 4, MaxLon: 5}
	polar := geo.Box{MinLat: 89, MaxLat: 90, AllLongitudes: true}

	tests := []struct {
		name   string
		facets Facets
		want   bson.M
	}{
		{name: "no facets", facets: Facets{}, want: bson.M{}},
		{
			name:   "all facets",
			facets: Facets{ServiceType: "boarding", AnimalID: "dog", Option: "garden"},
			want: bson.M{
				"services.boarding.active": true,
				"animal_ids":               "dog",
				"options":                  "garden",
			},
		},
		{
			name:   "bounded box",
			facets: Facets{Box: &box},
			want: bson.M{
				"latitude":  bson.M{"$gte": 50.0, "$lte": 51.0},
				"longitude": bson.M{"$gte": 4.0, "$lte": 5.0},
			},
		},
		{
			name:   "polar box",
			facets: Facets{Box: &polar},
			want: bson.M{
				"latitude":  bson.M{"$gte": 89.0, "$lte": 90.0},
				"longitude": bson.M{"$exists": true, "$ne": nil},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildFilter(tt.facets); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
