//go:build integration

package availability

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"petsitter/pkg/calendar"
	"petsitter/pkg/model"
	"petsitter/test/integration/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sitterID = "sitter-it-1"

func futureDay(days int) calendar.Day {
	return calendar.DayIn(time.Now(), time.Local).AddDays(days)
}

func TestBlockLifecycle(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)

	sitter := client.As(model.Actor{ID: sitterID, Role: model.RoleSitter})
	start, end := futureDay(30), futureDay(32)

	resp := sitter.POST(t, "/api/v1/sitters/"+sitterID+"/blocks", map[string]string{
		"start_date": start.String(),
		"end_date":   end.String(),
		"reason":     "holiday",
	})
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var blocks []model.AvailabilityBlock
	resp.Data(t, &blocks)
	require.Len(t, blocks, 3)
	assert.Equal(t, int64(3), mongo.CountDocuments(t, "AvailabilityBlocks", map[string]any{"sitter_id": sitterID}))

	path := fmt.Sprintf("/api/v1/sitters/%s/unavailable-dates?from=%s&to=%s", sitterID, start.AddDays(-1), end.AddDays(1))
	resp = client.GET(t, path)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var dates struct {
		Dates []string `json:"dates"`
	}
	resp.Data(t, &dates)
	assert.Equal(t, []string{start.String(), start.AddDays(1).String(), end.String()}, dates.Dates)

	resp = sitter.DELETE(t, "/api/v1/sitters/"+sitterID+"/blocks/"+blocks[1].ID)
	testutil.AssertStatusCode(t, resp, http.StatusNoContent)

	resp = client.GET(t, path)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Data(t, &dates)
	assert.Equal(t, []string{start.String(), end.String()}, dates.Dates)
}

func TestBlocksRequireOwningSitter(t *testing.T) {
	env := testutil.NewTestEnv()
	_, client := env.Setup(t)

	other := client.As(model.Actor{ID: "someone-else", Role: model.RoleSitter})
	resp := other.POST(t, "/api/v1/sitters/"+sitterID+"/blocks", map[string]string{
		"start_date": futureDay(10).String(),
	})
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)
	assert.Equal(t, "FORBIDDEN", testutil.ErrorCode(t, resp))
}
