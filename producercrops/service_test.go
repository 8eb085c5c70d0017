package producercrops_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/agro-console/apiclient"
	"github.com/jrsteele09/agro-console/apiclient/requesterfake"
	apperrors "github.com/jrsteele09/agro-console/internal/errors"
	"github.com/jrsteele09/agro-console/producercrops"
	"github.com/jrsteele09/agro-console/querycache"
	"github.com/stretchr/testify/require"
)

const listBody = `[
	{"id":"pc1","producer":{"id":"p1","name":"Acme","producerName":"Acme Agro"},"crop":{"id":"c1","name":"Soy"},"area":40,"createdAt":"2024-05-01T10:00:00.000Z"},
	{"id":"pc2","producer":{"id":"p2"},"crop":{"id":"c2"},"area":12.5,"createdAt":"2024-05-02T10:00:00.000Z","producerName":"Beta","cropName":"Corn"}
]`

func setup(t *testing.T) (*producercrops.Service, *requesterfake.FakeRequester) {
	t.Helper()
	fake := requesterfake.NewFakeRequester()
	fake.Respond(http.MethodGet, producercrops.Path, listBody)
	return producercrops.NewService(fake, producercrops.WithCache(querycache.New(time.Minute))), fake
}

func TestList(t *testing.T) {
	svc, _ := setup(t)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.Equal(t, "Acme Agro", list[0].ProducerLabel())
	require.Equal(t, "Soy", list[0].CropLabel())
	require.Equal(t, 40.0, list[0].Area)

	require.Equal(t, "Beta", list[1].ProducerLabel())
	require.Equal(t, "Corn", list[1].CropLabel())
	require.Equal(t, 12.5, list[1].Area)
}

func TestLabelsFallBackToIDs(t *testing.T) {
	pc := producercrops.ProducerCrop{Producer: producercrops.ProducerRef{ID: "p9"}, Crop: producercrops.CropRef{ID: "c9"}}
	require.Equal(t, "p9", pc.ProducerLabel())
	require.Equal(t, "c9", pc.CropLabel())
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc, fake := setup(t)
	fake.Respond(http.MethodPost, producercrops.Path, `{"id":"pc3","producer":{"id":"p1"},"crop":{"id":"c2"},"area":5,"createdAt":"2024-06-01T10:00:00.000Z"}`)

	_, err := svc.List(ctx)
	require.NoError(t, err)

	created, err := svc.Create(ctx, producercrops.Input{ProducerID: "p1", CropID: "c2", Area: 5})
	require.NoError(t, err)
	require.Equal(t, "pc3", created.ID)
	require.JSONEq(t, `{"producerId":"p1","cropId":"c2","area":5}`, fake.Calls()[1].Body)

	_, err = svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, fake.CallsTo(http.MethodGet, producercrops.Path))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, fake := setup(t)
	fake.Respond(http.MethodPut, "/producer-crops/pc1", `{"id":"pc1","producer":{"id":"p1"},"crop":{"id":"c1"},"area":45,"createdAt":"2024-05-01T10:00:00.000Z","updatedAt":"2024-06-01T10:00:00.000Z"}`)

	updated, err := svc.Update(ctx, "pc1", producercrops.Input{ProducerID: "p1", CropID: "c1", Area: 45})
	require.NoError(t, err)
	require.Equal(t, "2024-06-01T10:00:00.000Z", updated.UpdatedAt)
	require.JSONEq(t, `{"producerId":"p1","cropId":"c1","area":45,"id":"pc1"}`, fake.Calls()[0].Body)
}

func TestDelete(t *testing.T) {
	svc, fake := setup(t)
	fake.Respond(http.MethodDelete, "/producer-crops/pc1", "")

	require.NoError(t, svc.Delete(context.Background(), "pc1"))
	require.Equal(t, 1, fake.CallsTo(http.MethodDelete, "/producer-crops/pc1"))
}

func TestInvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, fake := setup(t)

	_, err := svc.Create(ctx, producercrops.Input{})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	require.ErrorContains(t, err, "producer id is required")
	require.ErrorContains(t, err, "crop id is required")

	_, err = svc.Update(ctx, "", producercrops.Input{ProducerID: "p1", CropID: "c1", Area: 1})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	require.ErrorIs(t, svc.Delete(ctx, ""), apperrors.ErrInvalidInput)
	require.Empty(t, fake.Calls())
}

func TestAreaIsCheckedByTheAPI(t *testing.T) {
	ctx := context.Background()
	svc, fake := setup(t)
	fake.Fail(http.MethodPost, producercrops.Path, &apiclient.APIError{
		Status:  http.StatusBadRequest,
		Message: "Validation Error",
		Errors:  []apiclient.FieldError{{Property: "area", Constraints: map[string]string{"isPositive": "area must be a positive number"}}},
	})

	_, err := svc.Create(ctx, producercrops.Input{ProducerID: "p1", CropID: "c1", Area: 0})
	require.True(t, apiclient.IsValidation(err))
	require.JSONEq(t, `{"producerId":"p1","cropId":"c1","area":0}`, fake.Calls()[0].Body)
}
