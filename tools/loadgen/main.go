// Command loadgen drives concurrent traffic against a running engage-core API
// and checks that the counters and balances it reads back are exact. It is the
// quickest way to observe the idempotency and locking behavior outside of unit
// tests: duplicate likes must collapse to one, concurrent claims must elect one
// winner, and every coin must be accounted for after settlement.
package main

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Config struct {
	BaseURL     string
	KeyFile     string // RSA private key PEM matching the API's public key
	Users       int
	Likes       int // concurrent like requests against one post
	Orders      int // open/claim/settle cycles
	Concurrency int
	Timeout     time.Duration
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.BaseURL, "url", "http://localhost:8080", "API base URL")
	flag.StringVar(&cfg.KeyFile, "key", "", "RSA private key PEM for signing user tokens")
	flag.IntVar(&cfg.Users, "users", 32, "Number of synthetic users to provision")
	flag.IntVar(&cfg.Likes, "likes", 256, "Like requests to fire at one post")
	flag.IntVar(&cfg.Orders, "orders", 16, "Order lifecycle cycles to run")
	flag.IntVar(&cfg.Concurrency, "concurrency", 16, "Concurrent request workers")
	flag.DurationVar(&cfg.Timeout, "timeout", 10*time.Second, "Per-request timeout")
	flag.Parse()
	return cfg
}

type runner struct {
	cfg    Config
	client *http.Client
	key    *rsa.PrivateKey
	stats  *stats
}

func main() {
	cfg := parseFlags()
	if cfg.KeyFile == "" {
		fmt.Println("Error: -key is required")
		flag.Usage()
		os.Exit(1)
	}
	if cfg.Users < 2 {
		fmt.Println("Error: -users must be at least 2")
		os.Exit(1)
	}

	keyPEM, err := os.ReadFile(cfg.KeyFile)
	if err != nil {
		fmt.Printf("Error reading key file: %v\n", err)
		os.Exit(1)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(keyPEM)
	if err != nil {
		fmt.Printf("Error parsing RSA private key: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	r := &runner{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		key:    key,
		stats:  newStats(),
	}

	if err := r.healthCheck(ctx); err != nil {
		fmt.Printf("Error: API not reachable at %s: %v\n", cfg.BaseURL, err)
		os.Exit(1)
	}
	fmt.Printf("Connected to %s\n", cfg.BaseURL)

	start := time.Now()
	if err := r.provisionUsers(ctx); err != nil {
		fmt.Printf("Error provisioning users: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Provisioned %d users\n", cfg.Users)

	if err := r.likeStorm(ctx); err != nil {
		fmt.Printf("Like scenario failed: %v\n", err)
		os.Exit(1)
	}
	if err := r.orderCycles(ctx); err != nil {
		fmt.Printf("Order scenario failed: %v\n", err)
		os.Exit(1)
	}

	r.stats.print(time.Since(start))
}

func (r *runner) userID(i int) string {
	return fmt.Sprintf("loadgen-%04d", i)
}

// token signs a short-lived JWT acting as the given user
func (r *runner) token(subject string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(r.key)
}

// call performs one authenticated JSON request and decodes the response into out
func (r *runner) call(ctx context.Context, method, path, subject string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if subject != "" {
		token, err := r.token(subject)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := r.client.Do(req)
	r.stats.record(time.Since(started), err == nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, string(raw))
	}
	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}

func (r *runner) healthCheck(ctx context.Context) error {
	return r.call(ctx, http.MethodGet, "/health", "", nil, nil)
}

func (r *runner) provisionUsers(ctx context.Context) error {
	return r.forEach(ctx, r.cfg.Users, func(i int) error {
		return r.call(ctx, http.MethodPost, "/api/v1/accounts/ensure", r.userID(i),
			map[string]string{"nickname": r.userID(i)}, nil)
	})
}

// likeStorm fires duplicate and distinct likes at a single post and checks the
// final counter is exactly the number of distinct likers plus the author probe
func (r *runner) likeStorm(ctx context.Context) error {
	author := r.userID(0)
	var post struct {
		ID string `json:"id"`
	}
	err := r.call(ctx, http.MethodPost, "/api/v1/posts", author,
		map[string]any{"content": "loadgen like storm"}, &post)
	if err != nil {
		return err
	}

	// Each request likes as user (i mod Users-1)+1, so heavy duplication is
	// guaranteed once Likes exceeds the user count.
	distinct := make(map[string]bool)
	err = r.forEach(ctx, r.cfg.Likes, func(i int) error {
		return r.call(ctx, http.MethodPost, "/api/v1/posts/"+post.ID+"/like",
			r.userID(i%(r.cfg.Users-1)+1), nil, nil)
	})
	if err != nil {
		return err
	}
	for i := range r.cfg.Likes {
		distinct[r.userID(i%(r.cfg.Users-1)+1)] = true
	}

	// The author's probe like is one more distinct toggle
	var probe struct {
		Changed bool  `json:"changed"`
		Count   int64 `json:"count"`
	}
	if err := r.call(ctx, http.MethodPost, "/api/v1/posts/"+post.ID+"/like", author, nil, &probe); err != nil {
		return err
	}

	expected := int64(len(distinct)) + 1
	if !probe.Changed || probe.Count != expected {
		return fmt.Errorf("like counter drifted: expected %d, got %d (changed=%v)",
			expected, probe.Count, probe.Changed)
	}
	fmt.Printf("Like storm: %d requests collapsed to %d likes ✅\n", r.cfg.Likes+1, expected)
	return nil
}

// orderCycles runs full open/claim/settle lifecycles funded by publish rewards
func (r *runner) orderCycles(ctx context.Context) error {
	err := r.forEach(ctx, r.cfg.Orders, func(i int) error {
		owner := r.userID(i % r.cfg.Users)
		worker := r.userID((i + 1) % r.cfg.Users)

		// Publishing earns the coin that funds the escrow
		if err := r.call(ctx, http.MethodPost, "/api/v1/posts", owner,
			map[string]any{"content": fmt.Sprintf("loadgen order funding %d", i)}, nil); err != nil {
			return err
		}

		var order struct {
			ID string `json:"id"`
		}
		err := r.call(ctx, http.MethodPost, "/api/v1/orders", owner,
			map[string]any{"title": fmt.Sprintf("loadgen order %d", i), "price": 10}, &order)
		if err != nil {
			return err
		}
		if err := r.call(ctx, http.MethodPost, "/api/v1/orders/"+order.ID+"/claim", worker, nil, nil); err != nil {
			return err
		}
		return r.call(ctx, http.MethodPost, "/api/v1/orders/"+order.ID+"/settle", owner, nil, nil)
	})
	if err != nil {
		return err
	}
	fmt.Printf("Order cycles: %d lifecycles completed ✅\n", r.cfg.Orders)
	return nil
}

// forEach runs fn(0..n-1) across the configured number of workers, stopping at
// the first error
func (r *runner) forEach(ctx context.Context, n int, fn func(i int) error) error {
	sem := make(chan struct{}, r.cfg.Concurrency)
	errCh := make(chan error, n)
	var wg sync.WaitGroup

	for i := range n {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if err := fn(i); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
