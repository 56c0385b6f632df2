package worker

import (
	"context"
	"errors"
	"time"

	"github.com/Beka01247/product-approvals/internal/domain"
	"github.com/Beka01247/product-approvals/internal/queue"
	"go.uber.org/zap"
)

// Processor handles one inbound message end to end. A nil return means the
// message's offset may be committed.
type Processor interface {
	Process(ctx context.Context, msg queue.Message) error
}

// IngestionWorker owns the single consumption loop: messages are processed
// strictly sequentially and each offset is committed only after its store
// transaction has committed. Stop is cooperative, checked between polls; a
// message already being processed finishes first.
type IngestionWorker struct {
	ingestionService Processor
	consumer         queue.Consumer
	logger           *zap.SugaredLogger
	ctx              context.Context
	cancel           context.CancelFunc
	done             chan struct{}

	// lowest uncommitted malformed offset per topic/partition, kept so a
	// later commit that moves past one can be called out
	heldBack map[string]map[int32]int64
}

func NewIngestionWorker(
	ingestionService Processor,
	consumer queue.Consumer,
	logger *zap.SugaredLogger,
) *IngestionWorker {
	ctx, cancel := context.WithCancel(context.Background())

	return &IngestionWorker{
		ingestionService: ingestionService,
		consumer:         consumer,
		logger:           logger,
		ctx:              ctx,
		cancel:           cancel,
		done:             make(chan struct{}),
		heldBack:         make(map[string]map[int32]int64),
	}
}

func (w *IngestionWorker) Start() error {
	w.logger.Info("starting ingestion worker")

	go w.run()

	return nil
}

// Stop cancels the loop and waits for the in-flight message to finish.
func (w *IngestionWorker) Stop() {
	w.logger.Info("stopping ingestion worker")
	w.cancel()
	<-w.done
}

func (w *IngestionWorker) run() {
	defer close(w.done)

	// w.ctx only interrupts polling; a message already handed to the
	// processor runs its transaction and commit to completion even when
	// Stop fires mid-message
	msgCtx := context.WithoutCancel(w.ctx)

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		messages, err := w.consumer.Poll(w.ctx)
		if err != nil {
			if w.ctx.Err() != nil {
				return
			}
			w.logger.Errorw("failed to poll inbound messages", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, msg := range messages {
			w.handleMessage(msgCtx, msg)
		}
	}
}

func (w *IngestionWorker) handleMessage(ctx context.Context, msg queue.Message) {
	err := w.ingestionService.Process(ctx, msg)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedPayload) {
			// no dead-letter queue: the offset stays uncommitted and the
			// message comes back on a later poll cycle
			w.logger.Errorw("skipping offset commit for malformed message",
				"partition", msg.Partition, "offset", msg.Offset, "error", err)
			w.holdBack(msg)
			return
		}

		w.logger.Errorw("failed to process inbound message",
			"partition", msg.Partition, "offset", msg.Offset, "error", err)
		return
	}

	if err := w.consumer.Commit(ctx, msg); err != nil {
		w.logger.Errorw("failed to commit offset",
			"partition", msg.Partition, "offset", msg.Offset, "error", err)
		return
	}

	if held, ok := w.heldBack[msg.Topic][msg.Partition]; ok && msg.Offset > held {
		// the group offset now points past the malformed message, so it
		// will not be redelivered after a restart or rebalance
		w.logger.Warnw("commit advanced past malformed message, it will not be redelivered",
			"partition", msg.Partition, "skipped_offset", held, "offset", msg.Offset)
		delete(w.heldBack[msg.Topic], msg.Partition)
	}

	w.logger.Infow("message processed", "partition", msg.Partition, "offset", msg.Offset)
}

func (w *IngestionWorker) holdBack(msg queue.Message) {
	partitions, ok := w.heldBack[msg.Topic]
	if !ok {
		partitions = make(map[int32]int64)
		w.heldBack[msg.Topic] = partitions
	}
	if _, held := partitions[msg.Partition]; !held {
		partitions[msg.Partition] = msg.Offset
	}
}
