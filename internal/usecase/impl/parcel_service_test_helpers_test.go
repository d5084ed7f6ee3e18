package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"courier/config"
	"courier/internal/domain/entity"
	"courier/internal/domain/repository"
	"courier/internal/domain/service"
	"courier/internal/usecase"

	"github.com/google/uuid"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Tracking: &config.TrackingConfig{
			FreshnessWindow:      2 * time.Minute,
			AvgSpeedKmh:          30,
			MaxPlausibleSpeedKmh: 120,
		},
		DeliveryOtp: &config.DeliveryOtpConfig{
			Length:      6,
			TTL:         10 * time.Minute,
			MaxAttempts: 3,
		},
	}
}

// fakeParcelRepo is an in-memory ParcelRepository. Reads hand out copies so a
// mutation only lands after an explicit UpdateParcel, like a real store.
type fakeParcelRepo struct {
	mu        sync.Mutex
	parcels   map[uuid.UUID]*entity.Parcel
	createErr error
	updateErr error
}

func newFakeParcelRepo() *fakeParcelRepo {
	return &fakeParcelRepo{parcels: make(map[uuid.UUID]*entity.Parcel)}
}

func cloneParcel(p *entity.Parcel) *entity.Parcel {
	clone := *p
	if p.AgentID != nil {
		agentID := *p.AgentID
		clone.AgentID = &agentID
	}
	if p.CurrentLocation != nil {
		loc := *p.CurrentLocation
		clone.CurrentLocation = &loc
	}
	if p.EtaMinutes != nil {
		eta := *p.EtaMinutes
		clone.EtaMinutes = &eta
	}
	if p.DeliveryOtp != nil {
		otp := *p.DeliveryOtp
		clone.DeliveryOtp = &otp
	}

	return &clone
}

func (f *fakeParcelRepo) CreateParcel(_ context.Context, parcel *entity.Parcel) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.parcels {
		if existing.TrackingCode == parcel.TrackingCode {
			return repository.ErrTrackingCodeConflict
		}
	}
	f.parcels[parcel.ID] = cloneParcel(parcel)

	return nil
}

func (f *fakeParcelRepo) FindParcelByID(_ context.Context, id uuid.UUID) (*entity.Parcel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parcel, ok := f.parcels[id]
	if !ok {
		return nil, repository.ErrParcelNotFound
	}

	return cloneParcel(parcel), nil
}

func (f *fakeParcelRepo) FindParcelByTrackingCode(_ context.Context, trackingCode string) (*entity.Parcel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, parcel := range f.parcels {
		if parcel.TrackingCode == trackingCode {
			return cloneParcel(parcel), nil
		}
	}

	return nil, repository.ErrParcelNotFound
}

func (f *fakeParcelRepo) FindParcelsByAgent(_ context.Context, agentID uuid.UUID) ([]*entity.Parcel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*entity.Parcel
	for _, parcel := range f.parcels {
		if parcel.AgentID != nil && *parcel.AgentID == agentID {
			result = append(result, cloneParcel(parcel))
		}
	}

	return result, nil
}

func (f *fakeParcelRepo) FindActiveParcels(_ context.Context) ([]*entity.Parcel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*entity.Parcel
	for _, parcel := range f.parcels {
		if !parcel.Status.IsTerminal() {
			result = append(result, cloneParcel(parcel))
		}
	}

	return result, nil
}

func (f *fakeParcelRepo) UpdateParcel(_ context.Context, parcel *entity.Parcel) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.parcels[parcel.ID]; !ok {
		return repository.ErrParcelNotFound
	}
	f.parcels[parcel.ID] = cloneParcel(parcel)

	return nil
}

func (f *fakeParcelRepo) CountParcelsByStatus(_ context.Context, status entity.Status) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, parcel := range f.parcels {
		if parcel.Status == status {
			count++
		}
	}

	return count, nil
}

func (f *fakeParcelRepo) stored(id uuid.UUID) *entity.Parcel {
	f.mu.Lock()
	defer f.mu.Unlock()

	return cloneParcel(f.parcels[id])
}

func (f *fakeParcelRepo) seed(parcel *entity.Parcel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.parcels[parcel.ID] = cloneParcel(parcel)
}

// fakeBroadcaster records the parcels handed to each broadcast hook.
type fakeBroadcaster struct {
	mu        sync.Mutex
	created   []*entity.Parcel
	updates   []*entity.Parcel
	locations []*entity.Parcel
}

func (f *fakeBroadcaster) BroadcastParcelCreated(parcel *entity.Parcel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, cloneParcel(parcel))
}

func (f *fakeBroadcaster) BroadcastParcelUpdate(parcel *entity.Parcel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, cloneParcel(parcel))
}

func (f *fakeBroadcaster) BroadcastParcelLocation(parcel *entity.Parcel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locations = append(f.locations, cloneParcel(parcel))
}

// fakePublisher records published parcel events.
type fakePublisher struct {
	mu     sync.Mutex
	events []*service.ParcelEvent
	err    error
}

func (f *fakePublisher) PublishParcelEvent(_ context.Context, event *service.ParcelEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)

	return nil
}

func (f *fakePublisher) Close() error { return nil }

type sentPush struct {
	token string
	title string
	body  string
	data  map[string]string
}

// fakeNotifier records pushed notifications.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentPush
	err  error
}

func (f *fakeNotifier) SendSingleNotification(_ context.Context, token, title, body string, data map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentPush{token: token, title: title, body: body, data: data})

	return nil
}

// fakeGeocoder resolves every address to a fixed point.
type fakeGeocoder struct {
	point *entity.Location
	err   error
}

func (f *fakeGeocoder) Resolve(_ context.Context, _ string) (*entity.Location, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.point, nil
}

// fakeQRService renders a stub image.
type fakeQRService struct {
	err error
}

func (f *fakeQRService) GenerateTrackingQR(trackingCode string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}

	return []byte("qr:" + trackingCode), nil
}

func (f *fakeQRService) ParseTrackingQR(qrData string) (string, error) {
	return qrData, nil
}

type parcelServiceFixture struct {
	service     usecase.ParcelUsecase
	repo        *fakeParcelRepo
	broadcaster *fakeBroadcaster
	publisher   *fakePublisher
	notifier    *fakeNotifier
	geocoder    *fakeGeocoder
}

func newParcelServiceFixture() *parcelServiceFixture {
	fixture := &parcelServiceFixture{
		repo:        newFakeParcelRepo(),
		broadcaster: &fakeBroadcaster{},
		publisher:   &fakePublisher{},
		notifier:    &fakeNotifier{},
		geocoder:    &fakeGeocoder{},
	}
	fixture.service = NewParcelService(ParcelServiceParams{
		ParcelRepo:  fixture.repo,
		Geocoder:    fixture.geocoder,
		Notifier:    fixture.notifier,
		Publisher:   fixture.publisher,
		Broadcaster: fixture.broadcaster,
		Config:      newTestConfig(),
		Logger:      newDiscardLogger(),
	})

	return fixture
}

func seedParcel(repo *fakeParcelRepo, status entity.Status) *entity.Parcel {
	parcel := &entity.Parcel{
		ID:              uuid.New(),
		TrackingCode:    "TRK-" + uuid.New().String()[:8],
		Status:          status,
		PickupAddress:   "12 Depot Rd",
		DeliveryAddress: "99 Harbor Ave",
		RecipientToken:  "push-token-1",
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if status != entity.StatusPending {
		agentID := uuid.New()
		parcel.AgentID = &agentID
	}
	repo.seed(parcel)

	return parcel
}
