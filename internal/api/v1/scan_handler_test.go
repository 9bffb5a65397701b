package v1

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	testcontainers "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"stampjoy/internal/api/response"
	"stampjoy/internal/event"
	"stampjoy/internal/model"
	"stampjoy/internal/repository/postgres"
	"stampjoy/internal/service"
	"stampjoy/internal/sse"
	jwtutil "stampjoy/pkg/jwt"
)

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

var (
	testSigningKeyOnce sync.Once
	testSigningKey     *rsa.PrivateKey
	testSigningKeyErr  error
)

func TestScan_AddsStampToCard(t *testing.T) {
	router, _ := setupScanTestServer(t)

	restaurantID := uuid.New()
	clientID := uuid.New()
	registerTestRestaurant(t, router, restaurantID, "Chez Scan")
	registerTestClient(t, router, clientID, "Alice")

	payload := currentQRPayload(t, router, restaurantID)

	resp := performJSONRequest(
		t,
		router,
		http.MethodPost,
		"/api/v1/scan",
		map[string]any{"payload": payload},
		bearerHeader(t, clientID, model.RoleClient, "Alice"),
	)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	body := decodeAPIResponse(t, resp.Body.Bytes())
	if body.Code != 0 {
		t.Fatalf("expected response code 0, got %d", body.Code)
	}

	var result struct {
		Outcome string `json:"Outcome"`
		Stamps  int    `json:"Stamps"`
	}
	if err := json.Unmarshal(body.Data, &result); err != nil {
		t.Fatalf("decode scan result: %v", err)
	}
	if result.Outcome != "stamp-added" {
		t.Fatalf("expected outcome stamp-added, got %q", result.Outcome)
	}
	if result.Stamps != 1 {
		t.Fatalf("expected 1 stamp, got %d", result.Stamps)
	}
}

func TestScan_SameTokenTwice_Returns409(t *testing.T) {
	router, _ := setupScanTestServer(t)

	restaurantID := uuid.New()
	clientID := uuid.New()
	registerTestRestaurant(t, router, restaurantID, "Chez Replay")
	registerTestClient(t, router, clientID, "Bob")

	payload := currentQRPayload(t, router, restaurantID)
	headers := bearerHeader(t, clientID, model.RoleClient, "Bob")

	first := performJSONRequest(t, router, http.MethodPost, "/api/v1/scan", map[string]any{"payload": payload}, headers)
	if first.Code != http.StatusOK {
		t.Fatalf("expected first scan status 200, got %d: %s", first.Code, first.Body.String())
	}

	second := performJSONRequest(t, router, http.MethodPost, "/api/v1/scan", map[string]any{"payload": payload}, headers)
	if second.Code != http.StatusConflict {
		t.Fatalf("expected second scan status 409, got %d", second.Code)
	}

	body := decodeAPIResponse(t, second.Body.Bytes())
	if body.Code != response.ErrDuplicateScan {
		t.Fatalf("expected app code %d, got %d", response.ErrDuplicateScan, body.Code)
	}
}

func TestScan_NoToken_Returns401(t *testing.T) {
	router, _ := setupScanTestServer(t)

	resp := performJSONRequest(
		t,
		router,
		http.MethodPost,
		"/api/v1/scan",
		map[string]any{"payload": "{}"},
		nil,
	)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}

	body := decodeAPIResponse(t, resp.Body.Bytes())
	if body.Code != response.ErrUnauthorized {
		t.Fatalf("expected app code %d, got %d", response.ErrUnauthorized, body.Code)
	}
}

func TestReferralBind_OwnCode_Returns422(t *testing.T) {
	router, _ := setupScanTestServer(t)

	restaurantID := uuid.New()
	clientID := uuid.New()
	registerTestRestaurant(t, router, restaurantID, "Chez Loop")
	registerTestClient(t, router, clientID, "Carol")

	payload := currentQRPayload(t, router, restaurantID)
	headers := bearerHeader(t, clientID, model.RoleClient, "Carol")

	scanResp := performJSONRequest(t, router, http.MethodPost, "/api/v1/scan", map[string]any{"payload": payload}, headers)
	if scanResp.Code != http.StatusOK {
		t.Fatalf("expected scan status 200, got %d: %s", scanResp.Code, scanResp.Body.String())
	}

	ownCode := referralCodeFromProfile(t, router, headers, restaurantID)

	bindResp := performJSONRequest(
		t,
		router,
		http.MethodPost,
		"/api/v1/referrals",
		map[string]any{"restaurant_id": restaurantID.String(), "code": ownCode},
		headers,
	)
	if bindResp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d: %s", bindResp.Code, bindResp.Body.String())
	}

	body := decodeAPIResponse(t, bindResp.Body.Bytes())
	if body.Code != response.ErrSelfReferral {
		t.Fatalf("expected app code %d, got %d", response.ErrSelfReferral, body.Code)
	}
}

func setupScanTestServer(t *testing.T) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ensureTestSigningKey(t)

	pool := startPostgresForHandlerTest(t)

	restaurantRepo := postgres.NewRestaurantRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	cardRepo := postgres.NewCardRepository(pool)
	rewardRepo := postgres.NewPendingRewardRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)

	logger := zap.NewNop()
	sseHub := sse.NewHub(logger)
	t.Cleanup(sseHub.Close)

	stampSvc := service.NewStampService(restaurantRepo, clientRepo, cardRepo, rewardRepo, auditRepo, pool, event.NewBus(), sseHub, logger)
	referralSvc := service.NewReferralService(restaurantRepo, clientRepo, cardRepo, auditRepo, logger)
	clientSvc := service.NewClientService(clientRepo, cardRepo, rewardRepo, auditRepo, logger)
	restaurantSvc := service.NewRestaurantService(restaurantRepo, cardRepo, auditRepo, nil, logger)

	router := gin.New()
	group := router.Group("/api/v1")
	RegisterScanRoutes(group, stampSvc)
	RegisterReferralRoutes(group, referralSvc)
	RegisterClientRoutes(group, clientSvc)
	RegisterRestaurantRoutes(group, restaurantSvc)

	return router, pool
}

func registerTestRestaurant(t *testing.T, router http.Handler, id uuid.UUID, name string) {
	t.Helper()

	resp := performJSONRequest(
		t,
		router,
		http.MethodPost,
		"/api/v1/restaurants/",
		map[string]any{"name": name, "loyalty_reward": "Free coffee"},
		bearerHeader(t, id, model.RoleRestaurant, name),
	)
	if resp.Code != http.StatusOK {
		t.Fatalf("register restaurant: expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func registerTestClient(t *testing.T, router http.Handler, id uuid.UUID, name string) {
	t.Helper()

	resp := performJSONRequest(
		t,
		router,
		http.MethodPost,
		"/api/v1/clients/",
		map[string]any{"name": name, "contact": name + "@example.com"},
		bearerHeader(t, id, model.RoleClient, name),
	)
	if resp.Code != http.StatusOK {
		t.Fatalf("register client: expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func currentQRPayload(t *testing.T, router http.Handler, restaurantID uuid.UUID) string {
	t.Helper()

	resp := performJSONRequest(
		t,
		router,
		http.MethodGet,
		"/api/v1/restaurants/me/qr",
		nil,
		bearerHeader(t, restaurantID, model.RoleRestaurant, "owner"),
	)
	if resp.Code != http.StatusOK {
		t.Fatalf("current qr: expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	body := decodeAPIResponse(t, resp.Body.Bytes())

	var data struct {
		Payload string `json:"payload"`
	}
	if err := json.Unmarshal(body.Data, &data); err != nil {
		t.Fatalf("decode qr payload: %v", err)
	}
	if data.Payload == "" {
		t.Fatal("expected non-empty qr payload")
	}
	return data.Payload
}

func referralCodeFromProfile(t *testing.T, router http.Handler, headers map[string]string, restaurantID uuid.UUID) string {
	t.Helper()

	resp := performJSONRequest(t, router, http.MethodGet, "/api/v1/clients/me", nil, headers)
	if resp.Code != http.StatusOK {
		t.Fatalf("profile: expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	body := decodeAPIResponse(t, resp.Body.Bytes())

	var profile struct {
		Cards []struct {
			RestaurantID uuid.UUID `json:"restaurant_id"`
			ReferralCode string    `json:"referral_code"`
		} `json:"cards"`
	}
	if err := json.Unmarshal(body.Data, &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}

	for _, card := range profile.Cards {
		if card.RestaurantID == restaurantID {
			return card.ReferralCode
		}
	}

	t.Fatalf("no card found for restaurant %s", restaurantID)
	return ""
}

func ensureTestSigningKey(t *testing.T) {
	t.Helper()

	testSigningKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			testSigningKeyErr = err
			return
		}

		der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
		if err != nil {
			testSigningKeyErr = err
			return
		}

		pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
		if err := os.Setenv("STAMPJOY_JWT_PUBLIC_KEY", string(pemBytes)); err != nil {
			testSigningKeyErr = err
			return
		}

		testSigningKey = key
	})

	if testSigningKeyErr != nil {
		t.Fatalf("init test signing key: %v", testSigningKeyErr)
	}
}

func bearerHeader(t *testing.T, subjectID uuid.UUID, role model.Role, name string) map[string]string {
	t.Helper()
	ensureTestSigningKey(t)

	claims := jwtutil.NewClaims(subjectID.String(), string(role), name, time.Hour)
	token, err := jwtutil.SignIdentityToken(claims, testSigningKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	return map[string]string{"Authorization": "Bearer " + token}
}

func performJSONRequest(
	t *testing.T,
	router http.Handler,
	method string,
	path string,
	payload map[string]any,
	headers map[string]string,
) *httptest.ResponseRecorder {
	t.Helper()

	var bodyBytes []byte
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		bodyBytes = raw
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeAPIResponse(t *testing.T, raw []byte) apiResponse {
	t.Helper()

	var resp apiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return resp
}

func startPostgresForHandlerTest(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "stampjoy_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("skipping test because docker/testcontainers is unavailable: %v", err)
	}

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("container mapped port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/stampjoy_test?sslmode=disable", host, port.Port())
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	deadline := time.Now().Add(30 * time.Second)
	for {
		err = pool.Ping(ctx)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("postgres did not become ready: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	applyMigrationsForHandlerTest(t, ctx, pool)
	return pool
}

func applyMigrationsForHandlerTest(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()

	migrationsDir := filepath.Join(findRepoRootForHandlerTest(t), "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		raw, err := os.ReadFile(filepath.Join(migrationsDir, file))
		if err != nil {
			t.Fatalf("read migration %s: %v", file, err)
		}
		if strings.TrimSpace(string(raw)) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, string(raw)); err != nil {
			t.Fatalf("apply migration %s: %v", file, err)
		}
	}
}

func findRepoRootForHandlerTest(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	for {
		_, statErr := os.Stat(filepath.Join(dir, "go.mod"))
		if statErr == nil {
			return dir
		}
		if !errors.Is(statErr, os.ErrNotExist) {
			t.Fatalf("stat go.mod: %v", statErr)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not locate repository root")
		}
		dir = parent
	}
}
