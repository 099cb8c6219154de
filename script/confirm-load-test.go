package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/signature"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/api/dto"
)

// Replays gateway confirmation callbacks against a running service.
// Every shop process id receives many concurrent, partly duplicated callbacks,
// so the run shows whether the service keeps acknowledging under load while
// recording each transaction's outcome once.

type CallbackScenario struct {
	Name     string
	Response string
	Code     string
}

type TestResult struct {
	Success      bool
	StatusCode   int
	ResponseTime time.Duration
	Redirect     string
	Error        error
}

type TestStats struct {
	TotalRequests      int
	SuccessfulRequests int
	FailedRequests     int
	TotalResponseTime  time.Duration
	MinResponseTime    time.Duration
	MaxResponseTime    time.Duration
	ResponseTimes      []time.Duration
	ErrorCounts        map[string]int
	ScenarioStats      map[string]int
	RedirectStats      map[string]int
	TotalTime          time.Duration
	Lock               sync.Mutex
}

func main() {
	concurrency := flag.Int("c", 5, "Number of concurrent goroutines")
	totalRequests := flag.Int("n", 100, "Total number of callbacks to send")
	processIDs := flag.String("p", "", "Comma-separated shop process ids to confirm (required)")
	amount := flag.String("amount", "150000.00", "Amount echoed in every callback")
	currency := flag.String("currency", "PYG", "Currency echoed in every callback")
	privateKey := flag.String("key", "", "Commerce private key used to sign callback tokens")
	badTokens := flag.Int("bad", 0, "Percentage of callbacks sent with a wrong token")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	delayMs := flag.Int("delay", 0, "Delay between callbacks in milliseconds")
	flag.Parse()

	var ids []string
	for _, id := range strings.Split(*processIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		fmt.Println("at least one shop process id is required (-p)")
		return
	}

	scenarios := []CallbackScenario{
		{"Approved", "S", "00"},
		{"Approved", "S", "00"},
		{"Declined", "N", "05"},
		{"Insufficient", "N", "51"},
	}

	fmt.Printf("Confirming %d shop process ids: %v\n", len(ids), ids)
	fmt.Printf("Concurrency: %d goroutines\n", *concurrency)
	fmt.Printf("Total callbacks: %d\n", *totalRequests)
	fmt.Printf("Bad token share: %d%%\n", *badTokens)

	stats := &TestStats{
		TotalRequests:   *totalRequests,
		MinResponseTime: time.Hour,
		ErrorCounts:     make(map[string]int),
		ResponseTimes:   make([]time.Duration, 0, *totalRequests),
		ScenarioStats:   make(map[string]int),
		RedirectStats:   make(map[string]int),
	}

	// the first scenario picked for an id sticks, later callbacks are duplicates
	chosen := make(map[string]CallbackScenario, len(ids))
	for _, id := range ids {
		chosen[id] = scenarios[rand.Intn(len(scenarios))]
	}

	results := make(chan TestResult, *totalRequests)
	jobs := make(chan int, *totalRequests)

	cfg := workerConfig{
		url:        strings.TrimRight(*baseURL, "/") + "/payments/confirm",
		amount:     *amount,
		currency:   *currency,
		privateKey: *privateKey,
		badTokens:  *badTokens,
		delay:      time.Duration(*delayMs) * time.Millisecond,
		ids:        ids,
		chosen:     chosen,
	}

	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(cfg, jobs, results, stats)
		}()
	}

	go func() {
		for i := 0; i < *totalRequests; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for result := range results {
			stats.Lock.Lock()
			if result.Success {
				stats.SuccessfulRequests++
				stats.RedirectStats[result.Redirect]++
			} else {
				stats.FailedRequests++
				errMsg := "unknown"
				if result.Error != nil {
					errMsg = result.Error.Error()
				}
				stats.ErrorCounts[errMsg]++
			}
			stats.ResponseTimes = append(stats.ResponseTimes, result.ResponseTime)
			stats.TotalResponseTime += result.ResponseTime
			stats.MinResponseTime = min(stats.MinResponseTime, result.ResponseTime)
			stats.MaxResponseTime = max(stats.MaxResponseTime, result.ResponseTime)
			stats.Lock.Unlock()
		}
	}()

	startTime := time.Now()
	fmt.Println("Test running...")

	wg.Wait()
	close(results)
	<-collected

	stats.TotalTime = time.Since(startTime)
	printResults(stats)
}

type workerConfig struct {
	url        string
	amount     string
	currency   string
	privateKey string
	badTokens  int
	delay      time.Duration
	ids        []string
	chosen     map[string]CallbackScenario
}

func worker(cfg workerConfig, jobs <-chan int, results chan<- TestResult, stats *TestStats) {
	client := &http.Client{
		Timeout: 10 * time.Second,
		// redirects are counted, not followed
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	for range jobs {
		if cfg.delay > 0 {
			time.Sleep(cfg.delay)
		}

		id := cfg.ids[rand.Intn(len(cfg.ids))]
		scenario := cfg.chosen[id]

		token := signature.Confirm(cfg.privateKey, id, cfg.amount, cfg.currency)
		name := scenario.Name
		if rand.Intn(100) < cfg.badTokens {
			token = strings.Repeat("0", len(token))
			name += " (bad token)"
		}

		stats.Lock.Lock()
		stats.ScenarioStats[name]++
		stats.Lock.Unlock()

		body, err := json.Marshal(dto.ConfirmationRequest{Operation: &usecase.CallbackOperation{
			Token:               token,
			ShopProcessID:       id,
			Response:            scenario.Response,
			ResponseDetails:     "load test",
			Amount:              cfg.amount,
			Currency:            cfg.currency,
			AuthorizationNumber: fmt.Sprintf("%06d", rand.Intn(1000000)),
			TicketNumber:        fmt.Sprintf("%010d", rand.Intn(1000000000)),
			ResponseCode:        scenario.Code,
			ResponseDescription: scenario.Name,
		}})
		if err != nil {
			results <- TestResult{Error: err}
			continue
		}

		req, err := http.NewRequest(http.MethodPost, cfg.url, bytes.NewReader(body))
		if err != nil {
			results <- TestResult{Error: err}
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		startTime := time.Now()
		resp, err := client.Do(req)
		result := TestResult{ResponseTime: time.Since(startTime)}

		if err != nil {
			result.Error = err
			results <- result
			continue
		}

		result.StatusCode = resp.StatusCode
		var ack dto.ConfirmationAck
		decodeErr := json.NewDecoder(resp.Body).Decode(&ack)
		resp.Body.Close()

		switch {
		case resp.StatusCode != http.StatusOK:
			result.Error = fmt.Errorf("HTTP status code %d", resp.StatusCode)
		case decodeErr != nil:
			result.Error = fmt.Errorf("decode ack: %w", decodeErr)
		case ack.Status != "success":
			result.Error = fmt.Errorf("ack status %q", ack.Status)
		default:
			result.Success = true
			result.Redirect = redirectBase(ack.RedirectURL)
		}
		results <- result
	}
}

// redirectBase drops the query so redirects group by destination
func redirectBase(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	if u == "" {
		return "(none)"
	}
	return u
}

func printResults(stats *TestStats) {
	tps := float64(stats.SuccessfulRequests) / stats.TotalTime.Seconds()

	var avgResponseTime, p50, p90, p99 time.Duration
	if n := len(stats.ResponseTimes); n > 0 {
		avgResponseTime = stats.TotalResponseTime / time.Duration(n)
		sorted := slices.Clone(stats.ResponseTimes)
		slices.Sort(sorted)
		p50 = sorted[n*50/100]
		p90 = sorted[n*90/100]
		p99 = sorted[n*99/100]
	}

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Callbacks:     %d\n", stats.TotalRequests)
	fmt.Printf("Acknowledged:        %d (%.1f%%)\n", stats.SuccessfulRequests,
		float64(stats.SuccessfulRequests)/float64(stats.TotalRequests)*100)
	fmt.Printf("Failed:              %d (%.1f%%)\n", stats.FailedRequests,
		float64(stats.FailedRequests)/float64(stats.TotalRequests)*100)
	fmt.Printf("Total Test Time:     %.2f seconds\n", stats.TotalTime.Seconds())
	fmt.Printf("Acknowledged/sec:    %.2f\n", tps)

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("Average Response:    %v\n", avgResponseTime)
	fmt.Printf("Minimum Response:    %v\n", stats.MinResponseTime)
	fmt.Printf("Maximum Response:    %v\n", stats.MaxResponseTime)
	fmt.Printf("P50 Response:        %v\n", p50)
	fmt.Printf("P90 Response:        %v\n", p90)
	fmt.Printf("P99 Response:        %v\n", p99)

	fmt.Println("\n----------------- SCENARIOS -----------------")
	for name, count := range stats.ScenarioStats {
		fmt.Printf("%-25s: %d callbacks\n", name, count)
	}

	fmt.Println("\n----------------- REDIRECTS -----------------")
	for target, count := range stats.RedirectStats {
		fmt.Printf("%-40s: %d\n", target, count)
	}

	if stats.FailedRequests > 0 {
		fmt.Println("\n----------------- ERROR DISTRIBUTION -----------------")
		for errMsg, count := range stats.ErrorCounts {
			fmt.Printf("%-40s: %d (%.1f%%)\n", errMsg, count,
				float64(count)/float64(stats.TotalRequests)*100)
		}
	}

	fmt.Println("\n================= CONCLUSION =================")
	if stats.FailedRequests == 0 {
		fmt.Println("✅ Every callback was acknowledged")
	} else {
		fmt.Printf("❌ %d callbacks were not acknowledged\n", stats.FailedRequests)
	}
	fmt.Println("Check each transaction's audit trail: its outcome must be recorded once.")
	fmt.Println("================================================")
}
