// Command loadgen is a synthetic load generator that drives the wire
// front-end concurrently, in the spirit of the reference service's own
// simulator and perf-test tooling. It is a test/ops tool, not engine
// code, and carries none of the engine's correctness guarantees itself —
// it exists to exercise them from the outside.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var baseURL = getenv("ENGINE_BASE_URL", "http://localhost:7713")

func postJSON(path string, payload any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func createAccount() (string, error) {
	out, err := postJSON("/accounts", map[string]any{"transaction_id": uuid.NewString()})
	if err != nil {
		return "", err
	}
	if success, _ := out["success"].(bool); !success {
		return "", fmt.Errorf("create account failed: %v", out["error_message"])
	}
	id, _ := out["created_account_id"].(string)
	return id, nil
}

func deposit(accountID string, amount uint64) error {
	_, err := postJSON(fmt.Sprintf("/accounts/%s/deposit", accountID), map[string]any{
		"transaction_id": uuid.NewString(),
		"amount":         amount,
	})
	return err
}

func transfer(from, to string, amount uint64) error {
	_, err := postJSON("/transfers", map[string]any{
		"transaction_id":         uuid.NewString(),
		"source_account_id":      from,
		"destination_account_id": to,
		"amount":                 amount,
	})
	return err
}

func transferWithID(txID, from, to string, amount uint64) error {
	_, err := postJSON("/transfers", map[string]any{
		"transaction_id":         txID,
		"source_account_id":      from,
		"destination_account_id": to,
		"amount":                 amount,
	})
	return err
}

func balanceOf(accountID string) (uint64, error) {
	resp, err := http.Get(fmt.Sprintf("%s/accounts/%s/balance?transaction_id=%s", baseURL, accountID, uuid.NewString()))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var out struct {
		Balance uint64 `json:"balance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.Balance, nil
}

// replayCheck fires the same transfer transaction_id twice concurrently and
// confirms it only ever moves the balance once, exercising the idempotency
// gate's TOCTOU guard under real contention rather than in-process only.
func replayCheck(from, to string, amount uint64) {
	txID := uuid.NewString()
	before, err := balanceOf(from)
	if err != nil {
		log.Printf("replay check: read balance before: %v", err)
		return
	}

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			_ = transferWithID(txID, from, to, amount)
		}()
	}
	wg.Wait()

	after, err := balanceOf(from)
	if err != nil {
		log.Printf("replay check: read balance after: %v", err)
		return
	}

	moved := before - after
	if moved != amount {
		log.Printf("replay check FAILED: source moved %d, expected exactly %d (duplicate application?)", moved, amount)
		return
	}
	log.Printf("replay check passed: concurrent duplicate submission applied exactly once")
}

func main() {
	accounts := flag.Int("accounts", 10, "number of accounts to create")
	workers := flag.Int("workers", 8, "number of concurrent transfer workers")
	transfersPerWorker := flag.Int("transfers", 1000, "transfers submitted per worker")
	seedAmount := flag.Uint64("seed", 100000, "amount deposited into each account before transfers start")
	flag.Parse()

	ids := make([]string, *accounts)
	for i := range ids {
		id, err := createAccount()
		if err != nil {
			log.Fatalf("create account: %v", err)
		}
		if err := deposit(id, *seedAmount); err != nil {
			log.Fatalf("seed deposit: %v", err)
		}
		ids[i] = id
	}

	var succeeded, failed int64
	var wg sync.WaitGroup
	wg.Add(*workers)

	start := time.Now()
	for w := 0; w < *workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < *transfersPerWorker; i++ {
				from := ids[rand.Intn(len(ids))]
				to := ids[rand.Intn(len(ids))]
				if err := transfer(from, to, 1); err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}
				atomic.AddInt64(&succeeded, 1)
			}
		}()
	}
	wg.Wait()

	log.Printf("done in %s: %d ok, %d failed", time.Since(start), succeeded, failed)

	var total uint64
	for _, id := range ids {
		bal, err := balanceOf(id)
		if err != nil {
			log.Fatalf("read final balance: %v", err)
		}
		total += bal
	}
	expected := *seedAmount * uint64(*accounts)
	if total != expected {
		log.Fatalf("conservation check FAILED: total balance %d, expected %d", total, expected)
	}
	log.Printf("conservation check passed: total balance %d unchanged across %d transfers", total, succeeded)

	if *accounts >= 2 {
		replayCheck(ids[0], ids[1], 50)
	}
}
