package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"
)

// A throwaway driver for a human seat: polls the seat's state and answers
// every pending prompt with a random legal choice.

type pendingAction struct {
	Kind       string `json:"kind"`
	SeatID     int    `json:"seat_id"`
	Candidates []int  `json:"candidates"`
	CanAbstain bool   `json:"can_abstain"`
}

type seatState struct {
	Status  string         `json:"status"`
	Phase   string         `json:"phase"`
	Winner  string         `json:"winner"`
	Pending *pendingAction `json:"pending"`
}

type actionPayload struct {
	Kind   string `json:"action_kind"`
	Target int    `json:"target,omitempty"`
	Text   string `json:"text,omitempty"`
}

var lines = []string{
	"I trust the quiet ones the least.",
	"No comment, keep the game moving.",
	"Someone here is not who they claim to be.",
}

func main() {
	baseURL := getenv("API_URL", "http://localhost:8080/api")
	sessionID := getenv("SESSION_ID", "")
	seatID, _ := strconv.Atoi(getenv("SEAT_ID", "1"))
	if sessionID == "" {
		log.Fatal("SESSION_ID is required")
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	client := &http.Client{Timeout: 10 * time.Second}

	for {
		// Nudge the engine, then see whether our seat owes anything.
		_, _ = client.Post(fmt.Sprintf("%s/sessions/%s/step", baseURL, sessionID), "application/json", nil)

		var st seatState
		if err := getJSON(client, fmt.Sprintf("%s/sessions/%s/state?seat=%d", baseURL, sessionID, seatID), &st); err != nil {
			log.Printf("state fetch failed: %v", err)
			time.Sleep(2 * time.Second)
			continue
		}
		if st.Status == "finished" {
			log.Printf("game over, winner: %s", st.Winner)
			return
		}
		if st.Pending == nil || st.Pending.SeatID != seatID {
			time.Sleep(time.Second)
			continue
		}

		payload := decide(rnd, st.Pending)
		body, _ := json.Marshal(payload)
		resp, err := client.Post(
			fmt.Sprintf("%s/sessions/%s/seats/%d/actions", baseURL, sessionID, seatID),
			"application/json", bytes.NewReader(body))
		if err != nil {
			log.Printf("action post failed: %v", err)
			time.Sleep(2 * time.Second)
			continue
		}
		resp.Body.Close()
		log.Printf("acted: %s target=%d status=%d", payload.Kind, payload.Target, resp.StatusCode)
	}
}

func decide(rnd *rand.Rand, p *pendingAction) actionPayload {
	out := actionPayload{Kind: p.Kind}
	switch p.Kind {
	case "speech", "wolf_chat", "last_words":
		out.Text = lines[rnd.Intn(len(lines))]
	default:
		if len(p.Candidates) > 0 {
			out.Target = p.Candidates[rnd.Intn(len(p.Candidates))]
		}
	}
	return out
}

func getJSON(client *http.Client, url string, v any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
