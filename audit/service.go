package audit

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/kasuganosora/tilepathd/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry holds one path request to be recorded.
type Entry struct {
	TraceID    string
	ClientID   string
	MapID      int
	Request    interface{}
	Response   interface{}
	Heuristic  string
	PathLen    int
	Cost       float64
	Cached     bool
	Error      string
	IP         string
	DurationMs int
}

// Service writes audit rows asynchronously in batches, so the request path
// never waits on the database.
type Service struct {
	db     *gorm.DB
	ch     chan *model.PathAudit
	stopCh chan struct{}
	wg     sync.WaitGroup
	logger *zap.Logger
}

// New creates an audit Service and starts its background worker.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	svc := &Service{
		db:     db,
		ch:     make(chan *model.PathAudit, 1024),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Log enqueues an entry for async DB write. A full queue drops the entry
// rather than stall a path request.
func (svc *Service) Log(entry Entry) {
	reqJSON, _ := json.Marshal(entry.Request)
	respJSON, _ := json.Marshal(entry.Response)
	record := &model.PathAudit{
		TraceID:    entry.TraceID,
		ClientID:   entry.ClientID,
		MapID:      entry.MapID,
		Request:    datatypes.JSON(reqJSON),
		Response:   datatypes.JSON(respJSON),
		Heuristic:  entry.Heuristic,
		PathLen:    entry.PathLen,
		Cost:       entry.Cost,
		Cached:     entry.Cached,
		Error:      entry.Error,
		IP:         entry.IP,
		DurationMs: entry.DurationMs,
	}
	select {
	case svc.ch <- record:
	default:
		svc.logger.Warn("audit channel full, dropping entry",
			zap.String("trace_id", entry.TraceID))
	}
}

// Stop flushes remaining entries and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (svc *Service) Stop() {
	select {
	case <-svc.stopCh:
	default:
		close(svc.stopCh)
	}
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	batch := make([]*model.PathAudit, 0, 100)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("audit batch write failed", zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-svc.ch:
			batch = append(batch, entry)
			if len(batch) >= 100 {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			// Drain remaining entries.
			for {
				select {
				case entry := <-svc.ch:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}
