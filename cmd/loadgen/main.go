package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL       = "http://localhost:8080"
	totalRequests = 200
	concurrency   = 20
)

// loadgen exercises the read path: it registers a throwaway user, creates an
// item, then hammers GET /items/{id}/ concurrently. The first read warms the
// cache; everything after should be served from it until the TTL lapses.
func main() {
	client := &http.Client{Timeout: 5 * time.Second}

	username := fmt.Sprintf("loadgen-%d", time.Now().UnixNano())
	mustPost(client, "/auth/register/", map[string]string{
		"username": username,
		"password": "loadgen-password",
		"email":    username + "@example.com",
	}, http.StatusCreated, "")

	var tokens struct {
		Access string `json:"access"`
	}
	mustPostInto(client, "/auth/login/", map[string]string{
		"username": username,
		"password": "loadgen-password",
	}, http.StatusOK, "", &tokens)

	var item struct {
		ID int64 `json:"id"`
	}
	mustPostInto(client, "/items/", map[string]any{
		"name":        "loadgen item",
		"description": "read-path load test",
		"quantity":    100,
		"price":       9.99,
	}, http.StatusCreated, tokens.Access, &item)
	log.Printf("created item %d", item.ID)

	var successCount atomic.Int32
	var failCount atomic.Int32

	start := time.Now()
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/items/%d/", baseURL, item.ID), nil)
			req.Header.Set("Authorization", "Bearer "+tokens.Access)
			resp, err := client.Do(req)
			if err != nil || resp.StatusCode != http.StatusOK {
				failCount.Add(1)
				if err == nil {
					resp.Body.Close()
				}
				return
			}
			resp.Body.Close()
			successCount.Add(1)
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	log.Printf("done: %d ok, %d failed in %s (%.0f req/s)",
		successCount.Load(), failCount.Load(), elapsed,
		float64(totalRequests)/elapsed.Seconds())

	// Cleanup
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/items/%d/", baseURL, item.ID), nil)
	req.Header.Set("Authorization", "Bearer "+tokens.Access)
	if resp, err := client.Do(req); err == nil {
		resp.Body.Close()
	}
}

func mustPost(client *http.Client, path string, body any, wantStatus int, bearer string) {
	mustPostInto(client, path, body, wantStatus, bearer, nil)
}

func mustPostInto(client *http.Client, path string, body any, wantStatus int, bearer string, out any) {
	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		log.Fatalf("POST %s: status %d, want %d", path, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("POST %s: decode response: %v", path, err)
		}
	}
}
