package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/hamed0406/healthdash/internal/domain"
)

func main() {
	index := flag.Int("i", -1, "check only the service at this index (0-based)")
	flag.Parse()

	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}
	api = strings.TrimRight(api, "/")

	url := api + "/api/services/check?wait=true"
	if *index >= 0 {
		url = fmt.Sprintf("%s/api/services/%d/check?wait=true", api, *index)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Post(url, "application/json", nil)
	if err != nil {
		fmt.Println("Error contacting API:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Println("API returned status:", resp.Status)
		os.Exit(1)
	}

	var services []domain.ServiceHealth
	if *index >= 0 {
		var one domain.ServiceHealth
		err = json.NewDecoder(resp.Body).Decode(&one)
		services = append(services, one)
	} else {
		err = json.NewDecoder(resp.Body).Decode(&services)
	}
	if err != nil {
		fmt.Println("Could not decode API response:", err)
		os.Exit(1)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATUS\tLATENCY\tENDPOINT")
	failed := false
	for _, s := range services {
		lat := "-"
		if s.ResponseTimeMS != nil {
			lat = fmt.Sprintf("%dms", *s.ResponseTimeMS)
		}
		if s.Status != domain.StatusOK {
			failed = true
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, strings.ToUpper(string(s.Status)), lat, s.Endpoint)
	}
	tw.Flush()

	if failed {
		os.Exit(2)
	}
}
