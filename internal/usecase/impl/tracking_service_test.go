package impl

import (
	"context"
	"testing"
	"time"

	"courier/internal/domain/entity"
	domainerrors "courier/internal/domain/errors"
	"courier/internal/realtime"
	"courier/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackingServiceFixture struct {
	service usecase.TrackingUsecase
	repo    *fakeParcelRepo
	cache   *realtime.LocationCache
	qr      *fakeQRService
}

func newTrackingServiceFixture() *trackingServiceFixture {
	fixture := &trackingServiceFixture{
		repo:  newFakeParcelRepo(),
		cache: realtime.NewLocationCache(120),
		qr:    &fakeQRService{},
	}
	fixture.service = NewTrackingService(TrackingServiceParams{
		ParcelRepo: fixture.repo,
		Cache:      fixture.cache,
		QRService:  fixture.qr,
		Config:     newTestConfig(),
		Logger:     newDiscardLogger(),
	})

	return fixture
}

func TestTrackingService_GetParcelByTrackingCode(t *testing.T) {
	fixture := newTrackingServiceFixture()
	ctx := context.Background()
	seeded := seedParcel(fixture.repo, entity.StatusInTransit)

	parcel, err := fixture.service.GetParcelByTrackingCode(ctx, seeded.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, parcel.ID)

	_, err = fixture.service.GetParcelByTrackingCode(ctx, "TRK-MISSING")
	assert.ErrorIs(t, err, domainerrors.ErrParcelNotFound)
}

func TestTrackingService_GetTrackingQR(t *testing.T) {
	fixture := newTrackingServiceFixture()
	ctx := context.Background()
	seeded := seedParcel(fixture.repo, entity.StatusPending)

	image, err := fixture.service.GetTrackingQR(ctx, seeded.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, []byte("qr:"+seeded.TrackingCode), image)

	_, err = fixture.service.GetTrackingQR(ctx, "TRK-MISSING")
	assert.ErrorIs(t, err, domainerrors.ErrParcelNotFound)
}

func TestTrackingService_GetAgentStatus(t *testing.T) {
	fixture := newTrackingServiceFixture()
	ctx := context.Background()

	_, err := fixture.service.GetAgentStatus(ctx, "agent-1")
	assert.ErrorIs(t, err, domainerrors.ErrAgentLocationUnknown)

	now := time.Now()
	require.NoError(t, fixture.cache.Report("agent-1", entity.Location{
		Latitude: 23.8100, Longitude: 90.40, CapturedAt: now.Add(-6 * time.Second),
	}))
	require.NoError(t, fixture.cache.Report("agent-1", entity.Location{
		Latitude: 23.8109, Longitude: 90.40, CapturedAt: now,
	}))

	status, err := fixture.service.GetAgentStatus(ctx, "agent-1")
	require.NoError(t, err)
	assert.True(t, status.Online)
	require.NotNil(t, status.Location)
	assert.Equal(t, 23.8109, status.Location.Latitude)
	require.NotNil(t, status.SpeedKmh)
	assert.InDelta(t, 60, *status.SpeedKmh, 3)
}

func TestTrackingService_GetAgentStatus_OfflineAfterWindow(t *testing.T) {
	fixture := newTrackingServiceFixture()
	ctx := context.Background()

	require.NoError(t, fixture.cache.Report("agent-1", entity.Location{
		Latitude: 23.81, Longitude: 90.40, CapturedAt: time.Now().Add(-3 * time.Minute),
	}))

	status, err := fixture.service.GetAgentStatus(ctx, "agent-1")
	require.NoError(t, err)
	assert.False(t, status.Online, "a stale sample still resolves but flags the agent offline")
	assert.NotNil(t, status.Location)
}

func TestTrackingService_ListActiveParcels(t *testing.T) {
	fixture := newTrackingServiceFixture()
	ctx := context.Background()

	seedParcel(fixture.repo, entity.StatusPending)
	seedParcel(fixture.repo, entity.StatusInTransit)
	seedParcel(fixture.repo, entity.StatusDelivered)
	seedParcel(fixture.repo, entity.StatusFailed)

	parcels, err := fixture.service.ListActiveParcels(ctx)
	require.NoError(t, err)
	assert.Len(t, parcels, 2)
}

func TestTrackingService_GetStatusSummary(t *testing.T) {
	fixture := newTrackingServiceFixture()
	ctx := context.Background()

	seedParcel(fixture.repo, entity.StatusPending)
	seedParcel(fixture.repo, entity.StatusPending)
	seedParcel(fixture.repo, entity.StatusDelivered)

	summary, err := fixture.service.GetStatusSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Counts[entity.StatusPending])
	assert.Equal(t, int64(1), summary.Counts[entity.StatusDelivered])
	assert.Equal(t, int64(0), summary.Counts[entity.StatusInTransit])
}
