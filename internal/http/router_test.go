package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/likerotech-cyber/Check-Lariviere/internal/config"
	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
	"github.com/likerotech-cyber/Check-Lariviere/internal/http/handlers"
	"github.com/likerotech-cyber/Check-Lariviere/internal/notify"
	"github.com/likerotech-cyber/Check-Lariviere/internal/realtime"
	"github.com/likerotech-cyber/Check-Lariviere/internal/repo"
)

func init() { gin.SetMode(gin.TestMode) }

func newTestRouter(t *testing.T, name string) (*gin.Engine, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	cfg := config.Config{
		GinMode:          gin.TestMode,
		APIBasePath:      "/api/v1",
		HourlyRate:       60,
		DetailedQuoteFee: 50,
		RateRPS:          1000, // out of the way for request-heavy scenarios
		RateBurst:        1000,
		IdempotencyTTL:   time.Hour,
		Mail:             config.MailConfig{BillingEmail: "technicien@lescycleslariviere.com"},
		Auth:             config.AuthConfig{JWTSecret: "router-test-secret", TokenTTL: time.Hour},
		OTEL:             config.OTELConfig{ServiceName: "router-test"},
	}

	r := gin.New()
	RegisterRoutes(r, db, realtime.NewHub(), notify.NopMailer{Log: zerolog.Nop()}, cfg)
	return r, db
}

func signupToken(t *testing.T, r *gin.Engine) string {
	t.Helper()

	body := []byte(`{"email":"marie@lescycleslariviere.com","password":"correct-horse","name":"Marie"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", w.Code, w.Body.String())
	}
	var resp handlers.TokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal signup response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("signup returned empty token")
	}
	return resp.Token
}

func postIntake(r *gin.Engine, token, idemKey string) *httptest.ResponseRecorder {
	body := []byte(`{
		"vendor_name": "Marie",
		"client_issue": "Les freins sifflent",
		"client_name": "Jean Dupont",
		"vehicle_type": "bike",
		"client_decision": "accepted",
		"responses": {}
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/repairs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_IntakeRetryWithSameKeyCreatesOneRepair(t *testing.T) {
	r, db := newTestRouter(t, "router_idem")
	token := signupToken(t, r)

	first := postIntake(r, token, "retry-key-1")
	if first.Code != http.StatusCreated {
		t.Fatalf("first intake status = %d, body %s", first.Code, first.Body.String())
	}
	var created domain.Repair
	if err := json.Unmarshal(first.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal first intake: %v", err)
	}

	second := postIntake(r, token, "retry-key-1")
	if second.Code != http.StatusCreated {
		t.Fatalf("retry status = %d, body %s", second.Code, second.Body.String())
	}
	var replayed domain.Repair
	if err := json.Unmarshal(second.Body.Bytes(), &replayed); err != nil {
		t.Fatalf("unmarshal retry: %v", err)
	}
	if replayed.ID != created.ID {
		t.Fatalf("retry returned repair %s; want the original %s", replayed.ID, created.ID)
	}

	var count int64
	if err := db.Model(&domain.Repair{}).Count(&count).Error; err != nil {
		t.Fatalf("count repairs: %v", err)
	}
	if count != 1 {
		t.Fatalf("retry with the same Idempotency-Key created %d repairs, want 1", count)
	}
}

func TestRouter_IntakeWithoutKeyCreatesSeparateRepairs(t *testing.T) {
	r, db := newTestRouter(t, "router_nokey")
	token := signupToken(t, r)

	for i := 0; i < 2; i++ {
		if w := postIntake(r, token, ""); w.Code != http.StatusCreated {
			t.Fatalf("intake %d status = %d, body %s", i, w.Code, w.Body.String())
		}
	}

	var count int64
	if err := db.Model(&domain.Repair{}).Count(&count).Error; err != nil {
		t.Fatalf("count repairs: %v", err)
	}
	if count != 2 {
		t.Fatalf("two keyless intakes created %d repairs, want 2", count)
	}
}
