package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func itoa(n int) string { return strconv.Itoa(n) }

// Many carts compete for a handful of instances; the number of successful
// claims must equal the number published.
func TestIntegration_ConcurrentClaimsConserveStock(t *testing.T) {
	waitReady(t)
	id := registerProducer(t)
	tea := uniqueTea(t)
	published := 0
	for {
		code, _ := send(t, http.MethodPost, "/producers/"+id+"/products", tea)
		if code == http.StatusConflict {
			break
		}
		if code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", code)
		}
		published++
	}

	concurrency := 50
	client := &http.Client{Timeout: 5 * time.Second}
	body, _ := json.Marshal(tea)
	carts := make([]int, concurrency)
	for i := range carts {
		carts[i] = newCart(t)
	}

	var (
		wg   sync.WaitGroup
		won  atomic.Int64
		errs = make(chan error, concurrency)
	)
	wg.Add(concurrency)
	for _, c := range carts {
		go func(c int) {
			defer wg.Done()
			r, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/carts/%d/items", baseURL(), c), bytes.NewReader(body))
			r.Header.Set("Content-Type", "application/json")
			resp, err := client.Do(r)
			if err != nil {
				errs <- err
				return
			}
			defer resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusOK:
				won.Add(1)
			case http.StatusConflict:
			default:
				errs <- fmt.Errorf("unexpected status %d", resp.StatusCode)
			}
		}(c)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
	if int(won.Load()) != published {
		t.Fatalf("expected %d successful claims, got %d", published, won.Load())
	}
}
