package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	testcontainers "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"stampjoy/internal/model"
	"stampjoy/internal/repository"
)

func TestCardUpdateTx_VersionGuard(t *testing.T) {
	pool := startPostgresForTest(t)
	cards := NewCardRepository(pool)
	ctx := context.Background()

	clientID, restaurantID := seedClientAndRestaurant(t, pool)

	card := &model.ClientCard{
		ClientID:     clientID,
		RestaurantID: restaurantID,
		ReferralCode: "AAAAA1",
	}
	if err := cards.Create(ctx, card); err != nil {
		t.Fatalf("create card: %v", err)
	}

	stale := *card

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	card.Stamps = 1
	if err := cards.UpdateTx(ctx, tx, card); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	tx, err = pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	stale.Stamps = 9
	if err := cards.UpdateTx(ctx, tx, &stale); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("stale write should conflict, got %v", err)
	}
}

func TestConcurrentScansSerializeStamps(t *testing.T) {
	pool := startPostgresForTest(t)
	cards := NewCardRepository(pool)
	ctx := context.Background()

	clientID, restaurantID := seedClientAndRestaurant(t, pool)

	card := &model.ClientCard{
		ClientID:     clientID,
		RestaurantID: restaurantID,
		ReferralCode: "AAAAA2",
	}
	if err := cards.Create(ctx, card); err != nil {
		t.Fatalf("create card: %v", err)
	}

	const workers = 20
	var wg sync.WaitGroup
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		token := fmt.Sprintf("tok-%d", i)
		go func() {
			defer wg.Done()
			errCh <- func() error {
				tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
				if err != nil {
					return err
				}
				defer tx.Rollback(ctx) //nolint:errcheck

				locked, err := cards.FindByClientAndRestaurantForUpdate(ctx, tx, clientID, restaurantID)
				if err != nil {
					return err
				}
				locked.Stamps++
				locked.ScannedTokens = append(locked.ScannedTokens, token)
				if err := cards.UpdateTx(ctx, tx, locked); err != nil {
					return err
				}
				return tx.Commit(ctx)
			}()
		}()
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("concurrent update: %v", err)
		}
	}

	got, err := cards.FindByClientAndRestaurant(ctx, clientID, restaurantID)
	if err != nil {
		t.Fatalf("reload card: %v", err)
	}
	if got.Stamps != workers {
		t.Fatalf("expected %d stamps, got %d (lost update)", workers, got.Stamps)
	}
	if len(got.ScannedTokens) != workers {
		t.Fatalf("expected %d consumed tokens, got %d", workers, len(got.ScannedTokens))
	}
}

func TestCardReferrerRoundTrip(t *testing.T) {
	pool := startPostgresForTest(t)
	cards := NewCardRepository(pool)
	ctx := context.Background()

	clientID, restaurantID := seedClientAndRestaurant(t, pool)

	referrerID := uuid.New()
	card := &model.ClientCard{
		ClientID:     clientID,
		RestaurantID: restaurantID,
		ReferralCode: "AAAAA3",
		Referrer: &model.ReferrerInfo{
			Code:         "ZZZZZ9",
			Reward:       "Free drink",
			ReferrerID:   referrerID,
			ReferrerName: "Alice",
		},
	}
	if err := cards.Create(ctx, card); err != nil {
		t.Fatalf("create card: %v", err)
	}

	got, err := cards.FindByReferralCode(ctx, restaurantID, "AAAAA3")
	if err != nil {
		t.Fatalf("find by code: %v", err)
	}
	if got.Referrer == nil || got.Referrer.ReferrerID != referrerID || got.Referrer.Reward != "Free drink" {
		t.Fatalf("referrer did not round-trip: %+v", got.Referrer)
	}

	got.Referrer = nil
	if err := cards.UpdateReferrer(ctx, got); err != nil {
		t.Fatalf("clear referrer: %v", err)
	}
	got, err = cards.FindByID(ctx, got.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Referrer != nil {
		t.Fatalf("expected cleared referrer, got %+v", got.Referrer)
	}
}

func TestFindByReferralCode_NotFound(t *testing.T) {
	pool := startPostgresForTest(t)
	cards := NewCardRepository(pool)

	_, err := cards.FindByReferralCode(context.Background(), uuid.New(), "NOPE00")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func seedClientAndRestaurant(t *testing.T, pool *pgxpool.Pool) (uuid.UUID, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	client := &model.Client{Name: "Test Client", Contact: "client@example.com"}
	if err := NewClientRepository(pool).Create(ctx, client); err != nil {
		t.Fatalf("seed client: %v", err)
	}

	restaurant := &model.Restaurant{
		Name:           "Seed Resto",
		LoyaltyReward:  "Free dessert",
		StampsRequired: model.DefaultStampsRequired,
		ReferralReward: "Free drink",
		PINHash:        "hash",
		PINEditable:    true,
	}
	if err := NewRestaurantRepository(pool).Create(ctx, restaurant); err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}

	return client.ID, restaurant.ID
}

func startPostgresForTest(t *testing.T) *pgxpool.Pool {
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

	applyAllMigrations(t, ctx, pool)
	return pool
}

func applyAllMigrations(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()

	migrationsDir := filepath.Join(findRepoRoot(t), "migrations")
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
		// #nosec G304 -- migration file list comes from controlled test directory.
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

func findRepoRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not locate repository root")
		}
		dir = parent
	}
}
