package flow

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// State 上傳流程狀態
type State string

// States
const (
	StateIdle       State = "idle"
	StateUploading  State = "uploading"
	StateUploaded   State = "uploaded"
	StateProcessing State = "processing"
	StateResult     State = "result"
	StateFailed     State = "error"
)

// ErrInvalidTransition 非法狀態轉換
var ErrInvalidTransition = errors.New("invalid state transition")

// Snapshot 目前狀態的唯讀副本
type Snapshot struct {
	State     State  `json:"state"`
	Percent   int    `json:"percent"`
	PublicID  string `json:"publicId,omitempty"`
	ResultURL string `json:"resultUrl,omitempty"`
	Err       string `json:"error,omitempty"`
}

// Flow idle → uploading → {uploaded | error}, uploaded → processing → {result | error}
type Flow struct {
	mu   sync.Mutex
	snap Snapshot
}

// New create a flow in idle state
func New() *Flow {
	return &Flow{snap: Snapshot{State: StateIdle}}
}

// Resume 從已上傳的 publicID 重建流程，用於跨請求的第二步
func Resume(publicID string) *Flow {
	return &Flow{snap: Snapshot{State: StateUploaded, Percent: 100, PublicID: publicID}}
}

// Percent round(loaded*100/total), 0 when total unknown
func Percent(loaded, total int64) int {
	if total <= 0 || loaded <= 0 {
		return 0
	}
	if loaded >= total {
		return 100
	}
	return int(math.Round(float64(loaded) * 100 / float64(total)))
}

func (f *Flow) move(to State, allowed ...State) error {
	for _, from := range allowed {
		if f.snap.State == from {
			f.snap.State = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.snap.State, to)
}

// StartUpload idle, result or error → uploading; a finished flow may start over
func (f *Flow) StartUpload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.move(StateUploading, StateIdle, StateResult, StateFailed, StateUploaded); err != nil {
		return err
	}
	f.snap = Snapshot{State: StateUploading}
	return nil
}

// Progress 更新上傳百分比，只在 uploading 有效
func (f *Flow) Progress(loaded, total int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snap.State != StateUploading {
		return fmt.Errorf("%w: progress in %s", ErrInvalidTransition, f.snap.State)
	}
	f.snap.Percent = Percent(loaded, total)
	return nil
}

// UploadSucceeded uploading → uploaded
func (f *Flow) UploadSucceeded(publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.move(StateUploaded, StateUploading); err != nil {
		return err
	}
	f.snap.Percent = 100
	f.snap.PublicID = publicID
	return nil
}

// Fail uploading or processing → error
func (f *Flow) Fail(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if mErr := f.move(StateFailed, StateUploading, StateProcessing); mErr != nil {
		return mErr
	}
	if err != nil {
		f.snap.Err = err.Error()
	}
	return nil
}

// StartProcessing uploaded → processing
func (f *Flow) StartProcessing() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.move(StateProcessing, StateUploaded)
}

// Complete processing → result
func (f *Flow) Complete(resultURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.move(StateResult, StateProcessing); err != nil {
		return err
	}
	f.snap.ResultURL = resultURL
	return nil
}

// Snapshot 回傳目前狀態
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}
