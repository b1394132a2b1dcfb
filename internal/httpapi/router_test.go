package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clinic-booking/core/internal/db"
	"github.com/clinic-booking/core/internal/model"
	"github.com/clinic-booking/core/internal/repository"
	"github.com/clinic-booking/core/internal/service"
)

type testServer struct {
	router  *gin.Engine
	store   *repository.Store
	consult *model.Service
}

func newTestServer(t *testing.T, ratePerMin int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "core.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	log := zap.NewNop()
	store := repository.NewStore(gdb)
	now := func() time.Time { return time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC) }

	consult := &model.Service{Name: "Consulta", DurationMinutes: 30, Price: 150, Active: true}
	if err := store.Services.Create(context.Background(), consult); err != nil {
		t.Fatalf("seed service: %v", err)
	}

	svc := Services{
		Availability: service.NewAvailabilityService(store, nil, time.UTC, now, log),
		Blocks:       service.NewBlockService(store, nil, log),
		Bookings:     service.NewBookingService(store, nil, log),
		Dashboard:    service.NewDashboardService(store, time.UTC, now),
		Catalog:      service.NewCatalogService(store, log),
	}
	router := NewRouter(svc, Options{BookingRatePerMin: ratePerMin}, log)
	return &testServer{router: router, store: store, consult: consult}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func bookingBody(serviceID, date, at, email string) map[string]any {
	return map[string]any{
		"customer":     map[string]string{"name": "Joana", "email": email, "phone": "11 91234-5678"},
		"service_id":   serviceID,
		"booking_date": date,
		"booking_time": at,
	}
}

func TestMonthAvailability_Endpoint(t *testing.T) {
	s := newTestServer(t, 30)

	rec := s.do(t, http.MethodGet, "/api/availability?year=2025&month=7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decode[struct {
		Availability map[string]struct {
			FullDayClosed    bool     `json:"fullDayClosed"`
			UnavailableSlots []string `json:"unavailableSlots"`
		} `json:"availability"`
	}](t, rec)
	monday := resp.Availability["2025-07-07"]
	if monday.FullDayClosed || len(monday.UnavailableSlots) != 5 || monday.UnavailableSlots[0] != "09:00" {
		t.Fatalf("monday = %+v", monday)
	}

	for _, q := range []string{"", "?year=2025", "?year=2025&month=x", "?year=2025&month=0"} {
		rec := s.do(t, http.MethodGet, "/api/availability"+q, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("query %q: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestReplaceDayAndAvailableTimes_Endpoints(t *testing.T) {
	s := newTestServer(t, 30)

	rec := s.do(t, http.MethodPut, "/api/availability/2025-07-05", map[string]any{
		"fullDayClosed":    false,
		"unavailableSlots": []string{"10:00", "12:30"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/available-times?date=2025-07-05", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	got := decode[struct {
		AvailableTimes []string `json:"available_times"`
	}](t, rec).AvailableTimes
	want := []string{"09:00", "09:30", "10:30", "11:00", "11:30", "12:00"}
	if len(got) != len(want) {
		t.Fatalf("available = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("available = %v, want %v", got, want)
		}
	}

	if rec := s.do(t, http.MethodGet, "/api/available-times", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing date: status = %d, want 400", rec.Code)
	}
	rec = s.do(t, http.MethodPut, "/api/availability/2025-07-05", map[string]any{"unavailableSlots": []string{"nope"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad slot: status = %d, want 400", rec.Code)
	}
	rec = s.do(t, http.MethodPut, "/api/availability/2025-07-05", map[string]any{"unavailableSlots": []string{"09:15"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("off-grid slot: status = %d, want 400", rec.Code)
	}
}

func TestCreateBooking_EmailIsAnIdentifierNotValidated(t *testing.T) {
	s := newTestServer(t, 30)

	rec := s.do(t, http.MethodPost, "/api/bookings", bookingBody(s.consult.ID.String(), "2025-07-10", "14:00", "joana-balcao"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := decode[BookingResponse](t, rec).Customer; got == nil || got.Email != "joana-balcao" {
		t.Fatalf("customer = %+v", got)
	}
}

func TestBookingLifecycle_Endpoints(t *testing.T) {
	s := newTestServer(t, 30)
	sid := s.consult.ID.String()

	rec := s.do(t, http.MethodPost, "/api/bookings", bookingBody(sid, "2025-07-10", "14:00", "joana@example.com"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	created := decode[BookingResponse](t, rec)
	if created.BookingDate != "2025-07-10" || created.BookingTime != "14:00" || created.Status != "confirmed" {
		t.Fatalf("created = %+v", created)
	}
	if created.Customer == nil || created.Service == nil {
		t.Fatalf("customer and service must be embedded")
	}

	rec = s.do(t, http.MethodPost, "/api/bookings", bookingBody(sid, "2025-07-10", "14:00", "other@example.com"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("double booking status = %d, want 409", rec.Code)
	}
	if reason := decode[ErrorResponse](t, rec).Reason; reason != string(service.ReasonSlotTaken) {
		t.Fatalf("reason = %q", reason)
	}

	rec = s.do(t, http.MethodPost, "/api/bookings", bookingBody(sid, "2025-07-11", "09:30", "other@example.com"))
	if rec.Code != http.StatusConflict || decode[ErrorResponse](t, rec).Reason != string(service.ReasonMaintenance) {
		t.Fatalf("maintenance: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	bad := bookingBody(sid, "2025-07-10", "15:00", "")
	if rec := s.do(t, http.MethodPost, "/api/bookings", bad); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing email: status = %d, want 400", rec.Code)
	}

	path := "/api/bookings/" + created.ID.String()
	rec = s.do(t, http.MethodPut, path, map[string]any{"booking_time": "15:00"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := decode[BookingResponse](t, rec).BookingTime; got != "15:00" {
		t.Fatalf("booking_time = %s", got)
	}

	rec = s.do(t, http.MethodPut, path+"/cancel", nil)
	if rec.Code != http.StatusOK || decode[BookingResponse](t, rec).Status != "cancelled" {
		t.Fatalf("cancel: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(t, http.MethodPut, path+"/cancel", nil); rec.Code != http.StatusOK {
		t.Fatalf("second cancel: status = %d, want 200", rec.Code)
	}

	rec = s.do(t, http.MethodGet, path+"/events", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("events status = %d", rec.Code)
	}
	if events := decode[[]EventResponse](t, rec); len(events) != 3 {
		t.Fatalf("events = %d, want created, updated, cancelled", len(events))
	}

	if rec := s.do(t, http.MethodDelete, path, nil); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, path, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status = %d, want 404", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/api/bookings/not-a-uuid", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status = %d, want 400", rec.Code)
	}
}

func TestBlockedTimes_Endpoints(t *testing.T) {
	s := newTestServer(t, 30)

	rec := s.do(t, http.MethodPost, "/api/blocked-times", map[string]any{
		"blocked_date": "2025-07-09",
		"start_time":   "13:00",
		"end_time":     "14:00",
		"reason":       "staff meeting",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	block := decode[BlockedTimeResponse](t, rec)
	if block.StartTime == nil || *block.StartTime != "13:00" || !block.Active {
		t.Fatalf("block = %+v", block)
	}

	rec = s.do(t, http.MethodPost, "/api/blocked-times", map[string]any{"blocked_date": "2025-07-09", "start_time": "13:00"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("half range: status = %d, want 400", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/api/blocked-times?start_date=2025-07-01&end_date=2025-07-31", nil)
	if rec.Code != http.StatusOK || len(decode[[]BlockedTimeResponse](t, rec)) != 1 {
		t.Fatalf("list: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if rec := s.do(t, http.MethodDelete, "/api/blocked-times/"+block.ID.String(), nil); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = s.do(t, http.MethodGet, "/api/blocked-times", nil)
	if rec.Code != http.StatusOK || len(decode[[]BlockedTimeResponse](t, rec)) != 0 {
		t.Fatalf("list after delete: %s", rec.Body.String())
	}
}

func TestCreateBooking_RateLimited(t *testing.T) {
	s := newTestServer(t, 2)
	sid := s.consult.ID.String()

	codes := make([]int, 0, 3)
	for _, at := range []string{"14:00", "15:00", "16:00"} {
		rec := s.do(t, http.MethodPost, "/api/bookings", bookingBody(sid, "2025-07-10", at, "rl@example.com"))
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusCreated || codes[1] != http.StatusCreated || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v, want [201 201 429]", codes)
	}

	// reads are not limited
	if rec := s.do(t, http.MethodGet, "/api/bookings", nil); rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
}

func TestSettingsServicesAndDashboard_Endpoints(t *testing.T) {
	s := newTestServer(t, 30)

	rec := s.do(t, http.MethodGet, "/api/settings/time-slots", nil)
	slots := decode[struct {
		TimeSlots []string `json:"time_slots"`
	}](t, rec).TimeSlots
	if len(slots) != 18 || slots[0] != "09:00" || slots[17] != "17:30" {
		t.Fatalf("time slots = %v", slots)
	}

	rec = s.do(t, http.MethodGet, "/api/services", nil)
	if services := decode[[]ServiceResponse](t, rec); len(services) != 1 || services[0].DurationMinutes != 30 {
		t.Fatalf("services = %s", rec.Body.String())
	}

	for _, p := range []string{
		"/api/admin/dashboard/daily-appointments-count",
		"/api/admin/dashboard/next-appointments",
		"/api/admin/dashboard/appointments-by-service",
		"/api/admin/dashboard/appointments-by-month",
	} {
		if rec := s.do(t, http.MethodGet, p, nil); rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, body = %s", p, rec.Code, rec.Body.String())
		}
	}

	rec = s.do(t, http.MethodGet, "/api/admin/dashboard/appointments-by-month", nil)
	if months := decode[[]service.MonthCount](t, rec); len(months) != 12 {
		t.Fatalf("months = %d, want 12", len(months))
	}
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	ok := NewRouter(Services{}, Options{}, log)
	rec := httptest.NewRecorder()
	ok.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthy: status = %d", rec.Code)
	}

	down := NewRouter(Services{}, Options{Ping: func() error { return errors.New("db down") }}, log)
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unhealthy: status = %d", rec.Code)
	}
}

func TestErrorHandler_RecoversPanics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if msg := decode[ErrorResponse](t, rec).Error; msg != "Internal Server Error" {
		t.Fatalf("error = %q", msg)
	}
}
