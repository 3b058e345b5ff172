// simulate hammers a running availability server with concurrent
// reserve/release/book traffic, to observe the exactly-one-winner behavior
// of contested reservations under real HTTP load.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicbook/availability/internal/api"
	"github.com/clinicbook/availability/internal/catalog"
	"github.com/clinicbook/availability/internal/client"
)

type SimConfig struct {
	APIBaseURL string
	Duration   time.Duration
	Workers    int
	BookRatio  float64 // chance a successful hold is booked instead of released
	SlotLimit  int     // max candidate slots loaded per motive
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (om *OperationMetrics) Record(latency time.Duration, success, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case success:
		atomic.AddInt64(&om.Success, 1)
	case conflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.latencies = append(om.latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Percentiles() (p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.latencies) == 0 {
		return 0, 0
	}

	latencies := make([]time.Duration, len(om.latencies))
	copy(latencies, om.latencies)
	sortDurations(latencies)

	return latencies[len(latencies)*50/100], latencies[min(len(latencies)*95/100, len(latencies)-1)]
}

func sortDurations(d []time.Duration) {
	for i := 1; i < len(d); i++ {
		for j := i; j > 0 && d[j] < d[j-1]; j-- {
			d[j], d[j-1] = d[j-1], d[j]
		}
	}
}

type Simulator struct {
	cfg   SimConfig
	api   *client.Client
	slots []uuid.UUID

	reserve OperationMetrics
	release OperationMetrics
	book    OperationMetrics
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	cfg := SimConfig{
		APIBaseURL: getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:   getDuration("SIM_DURATION", 30*time.Second),
		Workers:    getInt("SIM_WORKERS", 10),
		BookRatio:  getFloat("SIM_BOOK_RATIO", 0.2),
		SlotLimit:  getInt("SIM_SLOT_LIMIT", 20),
	}

	logger.Info().
		Str("base_url", cfg.APIBaseURL).
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Float64("book_ratio", cfg.BookRatio).
		Msg("simulator starting")

	sim := &Simulator{
		cfg: cfg,
		api: client.New(cfg.APIBaseURL, 10*time.Second),
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration+30*time.Second)
	defer cancel()

	if err := sim.loadSlots(ctx); err != nil {
		logger.Fatal().Err(err).Msg("load candidate slots")
	}
	logger.Info().Int("slots", len(sim.slots)).Msg("candidate slots loaded")

	sim.Run(ctx)
	sim.PrintReport()
}

// loadSlots collects a pool of bookable slot ids across all motives. A small
// pool makes contention likely, which is the point.
func (s *Simulator) loadSlots(ctx context.Context) error {
	for _, motive := range catalog.DefaultMotives {
		found, err := s.api.SearchSlots(ctx, client.SearchOptions{
			MotiveID: motive.ID,
			Limit:    s.cfg.SlotLimit,
		})
		if err != nil {
			return err
		}
		for _, slot := range found {
			s.slots = append(s.slots, slot.ID)
		}
	}
	if len(s.slots) == 0 {
		return fmt.Errorf("server returned no available slots")
	}
	return nil
}

func (s *Simulator) Run(ctx context.Context) {
	deadline := time.Now().Add(s.cfg.Duration)

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)))

			for time.Now().Before(deadline) && ctx.Err() == nil {
				s.step(ctx, rng)
			}
		}(i)
	}
	wg.Wait()
}

func (s *Simulator) step(ctx context.Context, rng *rand.Rand) {
	slotID := s.slots[rng.Intn(len(s.slots))]

	start := time.Now()
	reserved, err := s.api.ReserveSlot(ctx, slotID, 60)
	s.reserve.Record(time.Since(start), reserved, err == nil && !reserved)
	if err != nil || !reserved {
		return
	}

	if rng.Float64() < s.cfg.BookRatio {
		start = time.Now()
		_, booked, err := s.api.BookSlot(ctx, slotID, api.BookRequest{})
		s.book.Record(time.Since(start), booked, err == nil && !booked)
		return
	}

	start = time.Now()
	released, err := s.api.ReleaseSlot(ctx, slotID)
	s.release.Record(time.Since(start), released, err == nil && !released)
}

func (s *Simulator) PrintReport() {
	fmt.Println()
	fmt.Println("=== simulation report ===")
	printOp("reserve", &s.reserve)
	printOp("release", &s.release)
	printOp("book", &s.book)
}

func printOp(name string, om *OperationMetrics) {
	p50, p95 := om.Percentiles()
	fmt.Printf("%-8s total=%-6d success=%-6d conflict=%-6d error=%-4d p50=%-10s p95=%s\n",
		name, om.Total, om.Success, om.Conflict, om.Error, p50, p95)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
