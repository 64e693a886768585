// Package ingest feeds the raw log exports from Kafka: each security event
// topic is appended to its CSV under the data directory, in the exact shape
// the feature engineering step consumes.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"log"
	"os"
	"sync"

	"github.com/IBM/sarama"

	"github.com/markany/safepc-insider/config"
	"github.com/markany/safepc-insider/internal/common"
)

// Event is one raw security event. Logon and device events carry an
// activity, http events carry a url; the rest of the fields are shared.
type Event struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	User     string `json:"user"`
	PC       string `json:"pc"`
	Activity string `json:"activity"`
	URL      string `json:"url"`
}

var logHeader = []string{"id", "date", "user", "pc", "activity"}

// Sink appends events to one raw log CSV. Writes are serialized; the http
// export stays headerless with positional columns.
type Sink struct {
	mu         sync.Mutex
	path       string
	positional bool
}

func NewSink(path string, positional bool) *Sink {
	return &Sink{path: path, positional: positional}
}

// Append writes one event row, creating the file (with a header row for
// the named exports) on first write.
func (s *Sink) Append(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 && !s.positional {
		if err := w.Write(logHeader); err != nil {
			return err
		}
	}

	var rec []string
	if s.positional {
		rec = []string{ev.ID, ev.Date, ev.User, ev.PC, ev.URL}
	} else {
		rec = []string{ev.ID, ev.Date, ev.User, ev.PC, ev.Activity}
	}
	if err := w.Write(rec); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// Start consumes the three event topics and appends each message to its
// raw log export. Runs until the process exits.
func Start(cfg *config.Config) {
	common.InitTimezone(cfg.Timezone)

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		log.Fatalf("[INGEST] data dir: %v", err)
	}

	sinks := map[string]*Sink{
		cfg.Kafka.LogonTopic:  NewSink(common.LogonPath(cfg.Data.Dir), false),
		cfg.Kafka.HTTPTopic:   NewSink(common.HTTPPath(cfg.Data.Dir), true),
		cfg.Kafka.DeviceTopic: NewSink(common.DevicePath(cfg.Data.Dir), false),
	}

	consCfg := sarama.NewConfig()
	consCfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	consumer, err := sarama.NewConsumer([]string{cfg.Kafka.Bootstrap}, consCfg)
	if err != nil {
		log.Fatalf("[INGEST] consumer create failed: %v", err)
	}
	defer consumer.Close()

	for topic, sink := range sinks {
		partitions, err := consumer.Partitions(topic)
		if err != nil {
			log.Printf("[INGEST] %s partition lookup failed: %v", topic, err)
			continue
		}
		for _, p := range partitions {
			pc, err := consumer.ConsumePartition(topic, p, sarama.OffsetNewest)
			if err != nil {
				continue
			}
			go func(pc sarama.PartitionConsumer, topic string, sink *Sink) {
				defer pc.Close()
				for msg := range pc.Messages() {
					processMessage(topic, msg.Value, sink)
				}
			}(pc, topic, sink)
		}
	}
	log.Printf("[INGEST] consuming %d topics into %s", len(sinks), cfg.Data.Dir)
	select {}
}

// processMessage decodes one event and appends it. Events without a user
// are dropped; they can never contribute to a feature row.
func processMessage(topic string, data []byte, sink *Sink) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		log.Printf("[INGEST] %s: drop malformed event: %v", topic, err)
		return
	}
	if ev.User == "" {
		log.Printf("[INGEST] %s: drop event without user", topic)
		return
	}
	if err := sink.Append(ev); err != nil {
		log.Printf("[INGEST] %s: append failed: %v", topic, err)
	}
}
