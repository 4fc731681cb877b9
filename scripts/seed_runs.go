// seed_runs.go: standalone script that posts sample ranking runs to the Ranker API.
//
// Usage:
//
//	go run scripts/seed_runs.go -api http://localhost:8700 -client seed
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
)

type alternative struct {
	Name   string        `json:"name"`
	Values []interface{} `json:"values"`
}

type rankRequest struct {
	Name          string        `json:"name"`
	Alternatives  []alternative `json:"alternatives"`
	Weights       []float64     `json:"weights,omitempty"`
	Variant       string        `json:"variant,omitempty"`
	Normalization string        `json:"normalization,omitempty"`
	Crisp         bool          `json:"crisp,omitempty"`
	Scale         string        `json:"scale,omitempty"`
}

// Already on the 40..100 crisp scale.
var providers = []alternative{
	{Name: "Amazon Web Services (AWS)", Values: []interface{}{60, 100, 100, 100}},
	{Name: "Google Cloud Platform (GCP)", Values: []interface{}{80, 100, 80, 100}},
	{Name: "Microsoft Azure", Values: []interface{}{60, 80, 100, 80}},
	{Name: "Alibaba Cloud", Values: []interface{}{80, 60, 60, 80}},
	{Name: "DigitalOcean", Values: []interface{}{100, 80, 60, 60}},
}

// Raw measurements: monthly cost in USD and 0..100 benchmark scores.
var measured = []alternative{
	{Name: "Amazon Web Services (AWS)", Values: []interface{}{"$142", 94, 96, 98}},
	{Name: "Google Cloud Platform (GCP)", Values: []interface{}{"118", 91, 88, 95}},
	{Name: "Microsoft Azure", Values: []interface{}{131, "86%", 93, 89}},
	{Name: "Alibaba Cloud", Values: []interface{}{74, 78, 71, 83}},
	{Name: "DigitalOcean", Values: []interface{}{"48,5", 72, 66, 61}},
}

func main() {
	apiURL := flag.String("api", "http://localhost:8700", "Ranker API base URL")
	clientID := flag.String("client", "seed", "X-Client-ID header value")
	dryRun := flag.Bool("dry-run", false, "print requests without posting")
	flag.Parse()

	requests := []rankRequest{
		{Name: "cloud providers (fuzzy)", Alternatives: providers, Variant: "fuzzy"},
		{Name: "cloud providers (plain)", Alternatives: providers, Variant: "plain"},
		{Name: "cloud providers (cost first)", Alternatives: providers, Variant: "plain", Weights: []float64{0.6, 0.2, 0.1, 0.1}},
		{Name: "measured providers (crisp)", Alternatives: measured, Crisp: true, Scale: "100"},
		{Name: "measured providers (crisp, 1-4)", Alternatives: measured, Crisp: true, Scale: "4", Variant: "plain"},
	}

	if *dryRun {
		for i, r := range requests {
			fmt.Printf("[%d] %s (variant=%s, crisp=%t, alternatives=%d)\n", i+1, r.Name, r.Variant, r.Crisp, len(r.Alternatives))
		}
		return
	}

	client := &http.Client{}
	created, failed := 0, 0
	for _, r := range requests {
		body, _ := json.Marshal(r)
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/rank", bytes.NewReader(body))
		if err != nil {
			log.Printf("skip %q: %v", r.Name, err)
			failed++
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-ID", *clientID)

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("skip %q: %v", r.Name, err)
			failed++
			continue
		}

		var run struct {
			RunID  string `json:"run_id"`
			TopSAW string `json:"top_saw"`
			TopWP  string `json:"top_wp"`
			Error  string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&run)
		resp.Body.Close()

		if resp.StatusCode == http.StatusCreated {
			log.Printf("%s: run %s, SAW picks %q, WP picks %q", r.Name, run.RunID, run.TopSAW, run.TopWP)
			created++
		} else {
			log.Printf("skip %q: status %d: %s", r.Name, resp.StatusCode, run.Error)
			failed++
		}
	}

	log.Printf("done: %d created, %d failed", created, failed)
}
