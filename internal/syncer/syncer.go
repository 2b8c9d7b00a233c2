package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"huts4u-backend/config"
	"huts4u-backend/internal/availability"
	"huts4u-backend/internal/model"
	"huts4u-backend/internal/notification"
	"huts4u-backend/internal/parse"
	"huts4u-backend/internal/store"
	"huts4u-backend/internal/ttlcache"
)

// Service mirrors the upstream Huts4u backend into the local store.
type Service struct {
	cfg        *config.Config
	store      store.Store
	client     *http.Client
	workerPool *notification.WorkerPool
	cache      *ttlcache.Cache
	log        *zap.SugaredLogger
	now        func() time.Time
}

// Report summarizes one sync cycle.
type Report struct {
	Hotels    int
	Rooms     int
	Coupons   int
	Inventory int
	Reopened  []int64
}

// NewService creates and initializes a new sync service. cache may be nil.
func NewService(cfg *config.Config, s store.Store, cache *ttlcache.Cache, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	logger = logger.Named("syncer")

	var transport http.RoundTripper = &http.Transport{}
	if cfg.Sync.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.Sync.HTTPProxy)
		if err != nil {
			logger.Warnf("Invalid proxy URL %q: %v. Sync will not use a proxy.", cfg.Sync.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	timeout := time.Duration(cfg.Sync.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	return &Service{
		cfg:   cfg,
		store: s,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		workerPool: notification.NewWorkerPool(cfg.WorkerPool.Size, s.DB(), &webpushOptions, logger),
		cache:      cache,
		log:        logger,
		now:        time.Now,
	}
}

// Run starts the sync loop. It returns when ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Sync.Enabled {
		s.log.Info("Sync is disabled. Not starting.")
		return
	}
	s.log.Info("Starting sync service...")

	s.workerPool.Start(ctx)

	s.runOnce(ctx)

	timer := time.NewTimer(s.cfg.Sync.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Sync service shutting down.")
			return
		case <-timer.C:
			s.runOnce(ctx)
			timer.Reset(s.cfg.Sync.Interval)
		}
	}
}

func (s *Service) runOnce(ctx context.Context) {
	report, err := s.SyncOnce(ctx)
	if err != nil {
		s.log.Errorw("sync cycle failed", "error", err)
		return
	}
	s.log.Infow("sync cycle finished",
		"hotels", report.Hotels,
		"rooms", report.Rooms,
		"coupons", report.Coupons,
		"inventory", report.Inventory,
		"reopened", len(report.Reopened),
	)
}

// SyncOnce performs a single sync: catalog, coupons, then the inventory
// window. It only fails when the catalog cannot be fetched or stored; coupon
// and per-hotel inventory failures are logged and skipped.
func (s *Service) SyncOnce(ctx context.Context) (*Report, error) {
	s.log.Debug("Executing sync cycle...")
	report := &Report{}

	// Step 1: Fetch the catalog
	hotels, err := s.fetchHotels(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync aborted, catalog unavailable: %w", err)
	}
	report.Hotels = len(hotels)
	for _, h := range hotels {
		report.Rooms += len(h.Rooms)
	}

	if err := s.store.UpsertCatalog(ctx, hotels); err != nil {
		return nil, fmt.Errorf("storing catalog: %w", err)
	}

	// Step 2: Coupons
	coupons, err := s.fetchCoupons(ctx)
	if err != nil {
		s.log.Warnw("fetching coupons failed, keeping stored coupons", "error", err)
	} else {
		s.parseCouponExpiry(coupons)
		if err := s.store.UpsertCoupons(ctx, coupons); err != nil {
			s.log.Errorw("storing coupons failed", "error", err)
		} else {
			report.Coupons = len(coupons)
		}
	}

	// Step 3: Inventory, one request per hotel
	records, err := s.fetchInventory(ctx, hotels)
	if err != nil {
		return nil, fmt.Errorf("fetching inventory: %w", err)
	}
	report.Inventory = len(records)

	reopened, err := s.store.UpsertInventory(ctx, records, dayOpen)
	if err != nil {
		s.log.Errorw("storing inventory failed", "error", err)
	}
	report.Reopened = reopened

	// Dispatch notification jobs to the worker pool
	if len(reopened) > 0 {
		s.log.Infof("Dispatching notifications for %d rooms", len(reopened))
		for _, roomID := range reopened {
			s.workerPool.Dispatch(roomID)
		}
	}

	if s.cache != nil {
		s.cache.Flush()
	}
	return report, nil
}

// dayOpen reports whether any booking can still be made on the day.
func dayOpen(r model.InventoryDay) bool {
	return availability.DayOpen(r, availability.BookingHourly) ||
		availability.DayOpen(r, availability.BookingOvernight)
}

func (s *Service) fetchHotels(ctx context.Context) ([]store.ApiHotel, error) {
	var all []store.ApiHotel
	total := 1
	pageSize := s.cfg.Sync.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	for page := 1; (page-1)*pageSize < total; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("pageSize", strconv.Itoa(pageSize))

		var resp HotelPage
		if err := s.getJSON(ctx, "/hotels", q, &resp); err != nil {
			if page == 1 {
				return nil, err
			}
			// Keep what we have; rows missing from this cycle stay as stored.
			s.log.Warnw("fetching hotel page failed, continuing with partial catalog", "page", page, "error", err)
			break
		}
		if resp.Total == 0 || len(resp.Items) == 0 {
			break
		}
		total = resp.Total
		all = append(all, resp.Items...)
		s.log.Debugf("Fetched page %d, hotels so far: %d/%d", page, len(all), total)
	}
	return all, nil
}

func (s *Service) fetchCoupons(ctx context.Context) ([]store.ApiCoupon, error) {
	var coupons []store.ApiCoupon
	if err := s.getJSON(ctx, "/coupons", nil, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

// parseCouponExpiry fills ValidThroughParsed. A bare date is valid through
// the end of that day.
func (s *Service) parseCouponExpiry(coupons []store.ApiCoupon) {
	loc := s.location()
	for i := range coupons {
		raw := coupons[i].ValidThrough
		if raw == nil || strings.TrimSpace(*raw) == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(*raw)); err == nil {
			coupons[i].ValidThroughParsed = &t
			continue
		}
		day, err := parse.ParseDate(*raw, loc)
		if err != nil {
			s.log.Warnw("could not parse coupon expiry", "code", coupons[i].Code, "error", err)
			continue
		}
		end := day.AddDate(0, 0, 1).Add(-time.Second)
		coupons[i].ValidThroughParsed = &end
	}
}

// fetchInventory loads the inventory window for every hotel with rooms, with
// at most worker_pool.size requests in flight. A hotel whose request fails
// contributes no records this cycle.
func (s *Service) fetchInventory(ctx context.Context, hotels []store.ApiHotel) ([]model.InventoryDay, error) {
	loc := s.location()
	today := s.now().In(loc)
	from := today.Format(availability.DateLayout)
	to := today.AddDate(0, 0, max(s.cfg.Sync.WindowDays, 1)-1).Format(availability.DateLayout)

	var (
		mu      sync.Mutex
		records []model.InventoryDay
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.WorkerPool.Size, 1))
	for _, h := range hotels {
		if len(h.Rooms) == 0 {
			continue
		}
		hotel := h
		g.Go(func() error {
			raw, err := s.fetchHotelInventory(gctx, hotel, from, to)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.log.Warnw("fetching inventory failed", "hotel_id", hotel.ID, "error", err)
				return nil
			}
			normalized := s.normalizeInventory(hotel, raw, loc)

			mu.Lock()
			records = append(records, normalized...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) fetchHotelInventory(ctx context.Context, hotel store.ApiHotel, from, to string) ([]store.ApiInventoryRecord, error) {
	ids := make([]string, len(hotel.Rooms))
	for i, r := range hotel.Rooms {
		ids[i] = strconv.FormatInt(r.ID, 10)
	}

	q := url.Values{}
	q.Set("hotelId", strconv.FormatInt(hotel.ID, 10))
	q.Set("roomIds", strings.Join(ids, ","))
	q.Set("from", from)
	q.Set("to", to)

	var raw []store.ApiInventoryRecord
	if err := s.getJSON(ctx, "/inventory", q, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// normalizeInventory keys records by calendar day in loc, clamps counters
// and rates at zero and drops records for rooms outside hotel.
func (s *Service) normalizeInventory(hotel store.ApiHotel, raw []store.ApiInventoryRecord, loc *time.Location) []model.InventoryDay {
	rooms := make(map[int64]struct{}, len(hotel.Rooms))
	for _, r := range hotel.Rooms {
		rooms[r.ID] = struct{}{}
	}

	out := make([]model.InventoryDay, 0, len(raw))
	for _, r := range raw {
		if _, ok := rooms[r.RoomID]; !ok {
			s.log.Debugw("skipping inventory for unknown room", "hotel_id", hotel.ID, "room_id", r.RoomID)
			continue
		}
		date, err := parse.NormalizeDate(r.Date, loc)
		if err != nil {
			s.log.Warnw("skipping inventory record", "room_id", r.RoomID, "error", err)
			continue
		}
		out = append(out, model.InventoryDay{
			RoomID:              r.RoomID,
			Date:                date,
			IsBlocked:           r.IsBlocked,
			ThreeHourAvailable:  max(r.ThreeHourAvailable, 0),
			ThreeHourBooked:     max(r.ThreeHourBooked, 0),
			SixHourAvailable:    max(r.SixHourAvailable, 0),
			SixHourBooked:       max(r.SixHourBooked, 0),
			TwelveHourAvailable: max(r.TwelveHourAvailable, 0),
			TwelveHourBooked:    max(r.TwelveHourBooked, 0),
			OvernightAvailable:  max(r.OvernightAvailable, 0),
			OvernightBooked:     max(r.OvernightBooked, 0),
			ThreeHourRate:       max(r.ThreeHourRate, 0),
			SixHourRate:         max(r.SixHourRate, 0),
			TwelveHourRate:      max(r.TwelveHourRate, 0),
			OvernightRate:       max(r.OvernightRate, 0),
		})
	}
	return out
}

func (s *Service) location() *time.Location {
	if s.cfg.Sync.Location != nil {
		return s.cfg.Sync.Location
	}
	return time.UTC
}

// getJSON fetches {base_url}{path}?query and decodes the envelope's data
// into out.
func (s *Service) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := s.cfg.Sync.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range s.cfg.Sync.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received non-200 status code from %s: %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	envelope := ApiResponse[json.RawMessage]{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal api response: %w", err)
	}
	if envelope.Code != 0 {
		return fmt.Errorf("API returned non-zero application code %d: %s", envelope.Code, envelope.Message)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s data: %w", path, err)
	}
	return nil
}
