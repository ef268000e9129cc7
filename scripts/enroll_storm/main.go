// enroll_storm fires concurrent enrollment attempts at the gateway for one
// offering and reports the admission outcomes. Run it against an offering
// with N remaining seats and more than N workers: exactly N attempts should
// succeed, the rest should come back OFFERING_FULL or ALREADY_ENROLLED.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type outcome struct {
	status int
	code   string
}

func main() {
	var (
		base       string
		offeringID string
		email      string
		password   string
		workers    int
		timeout    time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "gateway base URL")
	flag.StringVar(&offeringID, "offering", "", "target offering ID")
	flag.StringVar(&email, "email", "", "student email")
	flag.StringVar(&password, "password", "", "student password")
	flag.IntVar(&workers, "workers", 20, "concurrent enrollment attempts")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	if offeringID == "" || email == "" || password == "" {
		log.Fatal("-offering, -email and -password are required")
	}

	client := &http.Client{Timeout: timeout}
	token, err := login(client, base, credentials{Email: email, Password: password})
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}

	outcomes := make([]outcome, workers)
	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			outcomes[slot] = enroll(client, base, token, offeringID)
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	counts := make(map[string]int)
	for _, o := range outcomes {
		key := fmt.Sprintf("%d %s", o.status, o.code)
		counts[key]++
	}

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Printf("%d attempts in %s\n", workers, elapsed.Round(time.Millisecond))
	for _, key := range keys {
		fmt.Printf("  %4d x %s\n", counts[key], key)
	}
}

func login(client *http.Client, base string, creds credentials) (string, error) {
	payload, err := json.Marshal(creds)
	if err != nil {
		return "", err
	}

	res, err := client.Post(base+"/api/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login returned status %d", res.StatusCode)
	}

	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return "", err
	}
	if envelope.Data.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return envelope.Data.Token, nil
}

func enroll(client *http.Client, base, token, offeringID string) outcome {
	payload, _ := json.Marshal(map[string]string{"offeringId": offeringID})
	req, err := http.NewRequest(http.MethodPost, base+"/api/enrollments", bytes.NewReader(payload))
	if err != nil {
		return outcome{code: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := client.Do(req)
	if err != nil {
		return outcome{code: "transport error"}
	}
	defer res.Body.Close()

	var envelope struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	_ = json.NewDecoder(res.Body).Decode(&envelope)

	code := "OK"
	if envelope.Error != nil {
		code = envelope.Error.Code
	}
	return outcome{status: res.StatusCode, code: code}
}
