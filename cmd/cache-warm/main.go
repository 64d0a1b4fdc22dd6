// cache-warm primes a running api-server's catalog cache by requesting
// the front-page surfaces (tag taxonomy, first search pages) so the
// first real readers after a deploy hit warm entries.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type envelope struct {
	Success bool   `json:"success"`
	Cached  bool   `json:"cached"`
	Message string `json:"message"`
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "base URL of the api-server")
	locales := flag.String("locales", "en", "comma-separated locales to warm")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	client := &http.Client{Timeout: 30 * time.Second}

	paths := []string{"/catalog/tags"}
	for _, loc := range strings.Split(*locales, ",") {
		loc = strings.TrimSpace(loc)
		if loc == "" {
			continue
		}
		suffix := ""
		if loc != "en" {
			suffix = "&locale=" + loc
		}
		paths = append(paths,
			"/catalog/manga?limit=20"+suffix,
			"/catalog/manga?limit=20&order=title"+suffix,
			"/catalog/manga?limit=20&status=completed"+suffix,
		)
	}

	failed := 0
	for _, p := range paths {
		if err := warm(client, *addr+p); err != nil {
			log.Error().Str("path", p).Err(err).Msg("warm failed")
			failed++
			continue
		}
		log.Info().Str("path", p).Msg("warmed")
	}

	if failed > 0 {
		log.Error().Int("failed", failed).Msg("cache warm incomplete")
		os.Exit(1)
	}
	log.Info().Int("entries", len(paths)).Msg("cache warm complete")
}

func warm(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("server said: %s (status %d)", env.Message, resp.StatusCode)
	}
	return nil
}
