package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/annel0/alien-planet/internal/eventbus"
)

// event-cli подписывается на стрим игровых событий в NATS JetStream и печатает их.
//
//	event-cli -nats nats://127.0.0.1:4222 -types tile_destroyed,worm_killed
func main() {
	var (
		natsURL    = flag.String("nats", "nats://127.0.0.1:4222", "NATS server URL")
		stream     = flag.String("stream", "GAME", "JetStream stream name")
		eventTypes = flag.String("types", "", "Event types filter (comma-separated)")
		sources    = flag.String("sessions", "", "Session IDs filter (comma-separated)")
		withCues   = flag.Bool("cues", false, "Include sound cue batches")
		limit      = flag.Int("limit", 0, "Exit after N events (0 — follow forever)")
	)
	flag.Parse()

	bus, err := eventbus.NewJetStreamBus(*natsURL, *stream, 24*time.Hour)
	if err != nil {
		log.Fatalf("❌ Failed to connect to NATS: %v", err)
	}
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	filter := eventbus.Filter{
		Types:   parseStringList(*eventTypes),
		Sources: parseStringList(*sources),
	}
	events := make(chan *eventbus.Envelope, 64)
	sub, err := bus.Subscribe(ctx, filter, func(_ context.Context, ev *eventbus.Envelope) {
		if ev.EventType == eventbus.TypeCues && !*withCues {
			return
		}
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	})
	if err != nil {
		log.Fatalf("❌ Subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	fmt.Printf("🎬 Tailing %s on %s (types: %s)\n", *stream, *natsURL, describe(filter.Types))
	count := 0
	for {
		select {
		case ev := <-events:
			printEvent(ev)
			count++
			if *limit > 0 && count >= *limit {
				return
			}
		case <-ctx.Done():
			fmt.Printf("\n📊 Total events: %d\n", count)
			return
		}
	}
}

func printEvent(ev *eventbus.Envelope) {
	var payload any
	data := string(ev.Payload)
	if err := json.Unmarshal(ev.Payload, &payload); err == nil {
		if compact, err := json.Marshal(payload); err == nil {
			data = string(compact)
		}
	}
	fmt.Printf("%s [%s] session=%s tick=%s prio=%d %s\n",
		ev.Timestamp.Format(time.RFC3339), ev.EventType, shortID(ev.Source), ev.CorrelationID, ev.Priority, data)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func describe(types []string) string {
	if len(types) == 0 {
		return "all"
	}
	return strings.Join(types, ",")
}

func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
