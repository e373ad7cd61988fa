package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookly/database/repository/memory"
	"bookly/handlers"
	"bookly/models"
	"bookly/routes"
	"bookly/services/booking"
	"bookly/services/catalog"
	"bookly/utils"

	"github.com/gin-gonic/gin"
)

var (
	secret = []byte("test-secret")
	now    = time.Date(2030, 3, 4, 8, 0, 0, 0, time.UTC)
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.New()
	store.SeedUser(models.User{ID: "c1", IsActive: true})
	store.SeedUser(models.User{ID: "stranger", IsActive: true})
	store.SeedUser(models.User{ID: "u-sp", IsActive: true})
	store.SeedSpecialist(models.Specialist{ID: "sp-1", UserID: "u-sp", AutoBooking: true})
	store.SeedSpecialist(models.Specialist{ID: "sp-2", UserID: "u-other"})
	store.SeedService(models.Service{ID: "svc-1", SpecialistID: "sp-1", Name: "Haircut", BasePrice: 50, Duration: 30, IsActive: true})

	repos := store.Repositories()
	lookup := catalog.NewCatalogService(repos.Catalog, repos.Users, nil, nil)
	svc := booking.NewBookingService(booking.Deps{
		Catalog: lookup,
		Clock:   func() time.Time { return now },
	}.FromStore(repos))

	r := gin.New()
	routes.RegisterRoutes(r, handlers.NewHandlerBundle(handlers.NewBookingHandler(svc, lookup), secret))
	return r
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := utils.GenerateToken(secret, userID, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func do(t *testing.T, r *gin.Engine, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, userID))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp utils.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return resp.Code
}

func createBody(hour int) map[string]any {
	return map[string]any{
		"serviceId":   "svc-1",
		"scheduledAt": time.Date(2030, 3, 6, hour, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}
}

func TestBookingRequiresToken(t *testing.T) {
	r := setupRouter(t)
	if w := do(t, r, http.MethodGet, "/api/bookings", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", w.Code)
	}
}

func TestCreateAndManageBookingOverHTTP(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodPost, "/api/bookings", "c1", createBody(10))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body %s", w.Code, w.Body.String())
	}
	var created models.Booking
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.CustomerID != "c1" || created.Status != models.StatusConfirmed || created.TotalAmount != 50 {
		t.Errorf("created = %+v", created)
	}

	w = do(t, r, http.MethodPost, "/api/bookings", "c1", createBody(10))
	if w.Code != http.StatusConflict || errorCode(t, w) != booking.CodeDuplicateBooking {
		t.Errorf("duplicate: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/bookings/"+created.ID, "stranger", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("stranger view status = %d, want 404", w.Code)
	}
	w = do(t, r, http.MethodGet, "/api/bookings/"+created.ID, "u-sp", nil)
	if w.Code != http.StatusOK {
		t.Errorf("specialist view status = %d, want 200", w.Code)
	}

	w = do(t, r, http.MethodPost, "/api/bookings/"+created.ID+"/cancel", "stranger", map[string]string{"reason": "mine now"})
	if w.Code != http.StatusForbidden || errorCode(t, w) != booking.CodeCancellationNotAuthorized {
		t.Errorf("stranger cancel: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, "/api/bookings/"+created.ID+"/complete", "u-sp", map[string]any{"paymentConfirmed": false})
	if w.Code != http.StatusUnprocessableEntity || errorCode(t, w) != booking.CodePaymentNotConfirmed {
		t.Errorf("unpaid complete: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, "/api/bookings/"+created.ID+"/start", "u-sp", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start: %d %s", w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodPost, "/api/bookings/"+created.ID+"/complete", "u-sp", map[string]any{"paymentConfirmed": true, "notes": "done"})
	if w.Code != http.StatusOK {
		t.Fatalf("complete: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/bookings?role=specialist", "u-sp", nil)
	var page models.BookingPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil || page.Total != 1 {
		t.Errorf("specialist list: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/bookings/specialists/sp-1/stats?startDate=2030-03-01&endDate=2030-03-31", "u-sp", nil)
	var stats models.SpecialistStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil || stats.Revenue != 50 {
		t.Errorf("stats: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/bookings/specialists/sp-1/stats", "stranger", nil)
	if w.Code != http.StatusForbidden || errorCode(t, w) != booking.CodeSpecialistNotAuthorized {
		t.Errorf("stranger stats: %d %s", w.Code, w.Body.String())
	}
}

func TestErrorStatusMapping(t *testing.T) {
	r := setupRouter(t)
	tests := []struct {
		name   string
		user   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"past time", "c1", http.MethodPost, "/api/bookings", map[string]any{"serviceId": "svc-1", "scheduledAt": "2020-01-01T10:00:00Z"}, http.StatusBadRequest, booking.CodeScheduledInPast},
		{"unknown service", "c1", http.MethodPost, "/api/bookings", map[string]any{"serviceId": "nope", "scheduledAt": "2030-03-06T10:00:00Z"}, http.StatusNotFound, booking.CodeServiceNotFound},
		{"unknown booking", "c1", http.MethodPost, "/api/bookings/nope/confirm", nil, http.StatusNotFound, booking.CodeBookingNotFound},
		{"bad role", "c1", http.MethodGet, "/api/bookings?role=admin", nil, http.StatusBadRequest, booking.CodeInvalidInput},
		{"bad stats date", "u-sp", http.MethodGet, "/api/bookings/specialists/sp-1/stats?startDate=yesterday", nil, http.StatusBadRequest, booking.CodeInvalidInput},
		{"inverted range", "u-sp", http.MethodGet, "/api/bookings/specialists/sp-1/stats?startDate=2030-03-31&endDate=2030-03-01", nil, http.StatusBadRequest, booking.CodeInvalidDateRange},
		{"foreign stats", "c1", http.MethodGet, "/api/bookings/specialists/sp-1/stats", nil, http.StatusForbidden, booking.CodeSpecialistNotAuthorized},
		{"other specialist stats", "u-sp", http.MethodGet, "/api/bookings/specialists/sp-2/stats", nil, http.StatusForbidden, booking.CodeSpecialistNotAuthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.user, tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if got := errorCode(t, w); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestHealthRoute(t *testing.T) {
	r := setupRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}
}
