package core

import (
	"sync"
	"time"

	"github.com/night-owl-018/seapay-certifier/constants"
)

// Progress is the shared batch status record callers poll while a run is in
// flight.
type Progress struct {
	mu sync.Mutex

	status      constants.RunStatus
	runID       string
	totalFiles  int
	processed   int
	failed      int
	currentFile string
	message     string
	startedAt   time.Time
	finishedAt  time.Time
}

// Snapshot is a point-in-time copy of the progress record.
type Snapshot struct {
	Status      constants.RunStatus `json:"status"`
	RunID       string              `json:"run_id,omitempty"`
	TotalFiles  int                 `json:"total_files"`
	Processed   int                 `json:"processed"`
	Failed      int                 `json:"failed"`
	CurrentFile string              `json:"current_file,omitempty"`
	Message     string              `json:"message,omitempty"`
	StartedAt   time.Time           `json:"started_at,omitempty"`
	FinishedAt  time.Time           `json:"finished_at,omitempty"`
}

func NewProgress() *Progress {
	return &Progress{status: constants.RunStatusIdle}
}

func (p *Progress) Start(runID string, totalFiles int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = constants.RunStatusProcessing
	p.runID = runID
	p.totalFiles = totalFiles
	p.processed = 0
	p.failed = 0
	p.currentFile = ""
	p.message = ""
	p.startedAt = time.Now()
	p.finishedAt = time.Time{}
}

func (p *Progress) File(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentFile = name
}

func (p *Progress) Done(ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ok {
		p.processed++
	} else {
		p.failed++
	}
}

func (p *Progress) Finish(status constants.RunStatus, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = status
	p.message = message
	p.currentFile = ""
	p.finishedAt = time.Now()
}

func (p *Progress) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Status:      p.status,
		RunID:       p.runID,
		TotalFiles:  p.totalFiles,
		Processed:   p.processed,
		Failed:      p.failed,
		CurrentFile: p.currentFile,
		Message:     p.message,
		StartedAt:   p.startedAt,
		FinishedAt:  p.finishedAt,
	}
}
