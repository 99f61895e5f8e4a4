package worker

import (
	"context"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"engagement/internal/queue"
)

const (
	DefaultWorkerCount  = 2
	DefaultBatchSize    = 10
	DefaultBlockTimeout = 5 * time.Second

	// Messages a replica holds unacked for longer than DefaultReclaimMinIdle
	// are assumed orphaned by a crash and taken over.
	DefaultReclaimInterval = 30 * time.Second
	DefaultReclaimMinIdle  = time.Minute
)

// EventHandler processes one event. *Handler implements it.
type EventHandler interface {
	HandleEvent(ctx context.Context, event queue.EngagementEvent) error
}

// ManagerConfig tunes the consumers of the engagement stream.
type ManagerConfig struct {
	WorkerCount  int
	BatchSize    int64
	BlockTimeout time.Duration
	// ConsumerPrefix distinguishes replicas within the group. Defaults to
	// the hostname.
	ConsumerPrefix string
	// ReclaimInterval is how often stale pending messages are claimed.
	// Negative disables reclaiming.
	ReclaimInterval time.Duration
	ReclaimMinIdle  time.Duration
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		WorkerCount:     DefaultWorkerCount,
		BatchSize:       DefaultBatchSize,
		BlockTimeout:    DefaultBlockTimeout,
		ReclaimInterval: DefaultReclaimInterval,
		ReclaimMinIdle:  DefaultReclaimMinIdle,
	}
}

func (c ManagerConfig) withDefaults() ManagerConfig {
	if c.WorkerCount <= 0 {
		c.WorkerCount = DefaultWorkerCount
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BlockTimeout <= 0 {
		c.BlockTimeout = DefaultBlockTimeout
	}
	if c.ReclaimInterval == 0 {
		c.ReclaimInterval = DefaultReclaimInterval
	}
	if c.ReclaimMinIdle <= 0 {
		c.ReclaimMinIdle = DefaultReclaimMinIdle
	}
	if c.ConsumerPrefix == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "engagement"
		}
		c.ConsumerPrefix = host
	}
	return c
}

// Manager runs a pool of goroutines that read the engagement stream through
// one consumer group, apply each event's cache invalidation and feed
// update, and acknowledge it.
type Manager struct {
	consumer queue.Consumer
	handler  EventHandler
	cfg      ManagerConfig
	stream   string
	group    string

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewManager(consumer queue.Consumer, handler EventHandler, cfg ManagerConfig) *Manager {
	return &Manager{
		consumer: consumer,
		handler:  handler,
		cfg:      cfg.withDefaults(),
		stream:   queue.StreamEngagement,
		group:    queue.ConsumerGroupEngagement,
	}
}

// Start creates the consumer group if needed and launches the workers.
// Call Stop to shut them down.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	if err := m.consumer.EnsureGroup(m.ctx, m.stream, m.group); err != nil {
		m.cancel()
		return err
	}

	log.Printf("[Manager] Starting %d workers for stream=%s group=%s",
		m.cfg.WorkerCount, m.stream, m.group)

	for i := 1; i <= m.cfg.WorkerCount; i++ {
		m.wg.Add(1)
		go m.runWorker(i)
	}

	if claimer, ok := m.consumer.(queue.StaleClaimer); ok && m.cfg.ReclaimInterval > 0 {
		m.wg.Add(1)
		go m.runReclaimer(claimer)
	}
	return nil
}

// Stop cancels the workers and waits for in-flight batches to finish.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	log.Printf("[Manager] Stopping workers...")
	m.cancel()
	m.wg.Wait()
	log.Printf("[Manager] All workers stopped")
}

func (m *Manager) runWorker(workerID int) {
	defer m.wg.Done()

	name := m.consumerName(strconv.Itoa(workerID))
	log.Printf("[Worker-%d] Started (consumer=%s)", workerID, name)

	// Replay what this consumer read but never acked before a restart
	m.drainPending(workerID, name)

	for m.ctx.Err() == nil {
		messages, err := m.consumer.Read(m.ctx, m.stream, m.group, name, m.cfg.BatchSize, m.cfg.BlockTimeout)
		if err != nil {
			if m.ctx.Err() != nil {
				break
			}
			log.Printf("[Worker-%d] Error reading: %v", workerID, err)
			m.sleep(time.Second)
			continue
		}
		m.handleMessages(workerID, messages)
	}
	log.Printf("[Worker-%d] Shutting down", workerID)
}

func (m *Manager) drainPending(workerID int, name string) {
	pr, ok := m.consumer.(queue.PendingReader)
	if !ok {
		return
	}

	for m.ctx.Err() == nil {
		messages, err := pr.ReadPending(m.ctx, m.stream, m.group, name, m.cfg.BatchSize)
		if err != nil {
			log.Printf("[Worker-%d] Error reading pending: %v", workerID, err)
			return
		}
		if len(messages) == 0 {
			return
		}
		log.Printf("[Worker-%d] Processing %d pending messages", workerID, len(messages))
		m.handleMessages(workerID, messages)
	}
}

// runReclaimer periodically takes over messages left pending by replicas
// that died between read and ack.
func (m *Manager) runReclaimer(claimer queue.StaleClaimer) {
	defer m.wg.Done()

	name := m.consumerName("reclaimer")
	ticker := time.NewTicker(m.cfg.ReclaimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
		}

		messages, err := claimer.ClaimStale(m.ctx, m.stream, m.group, name, m.cfg.ReclaimMinIdle, m.cfg.BatchSize)
		if err != nil {
			if m.ctx.Err() == nil {
				log.Printf("[Reclaimer] Error claiming: %v", err)
			}
			continue
		}
		if len(messages) > 0 {
			log.Printf("[Reclaimer] Claimed %d stale messages", len(messages))
			m.handleMessages(0, messages)
		}
	}
}

// handleMessages applies and acknowledges every message, failed ones
// included: a lost invalidation only leaves a value that expires within
// the staleness window.
func (m *Manager) handleMessages(workerID int, messages []queue.Message) {
	for _, msg := range messages {
		if err := m.handler.HandleEvent(m.ctx, msg.Event); err != nil {
			log.Printf("[Worker-%d] Handler error msgID=%s type=%s: %v", workerID, msg.ID, msg.Event.Type, err)
		}
		if err := m.consumer.Ack(m.ctx, m.stream, m.group, msg.ID); err != nil {
			log.Printf("[Worker-%d] ACK error msgID=%s: %v", workerID, msg.ID, err)
		}
	}
}

func (m *Manager) sleep(d time.Duration) {
	select {
	case <-m.ctx.Done():
	case <-time.After(d):
	}
}

func (m *Manager) consumerName(suffix string) string {
	return m.cfg.ConsumerPrefix + "-worker-" + suffix
}
