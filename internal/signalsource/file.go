package signalsource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/selivandex/market-intel/internal/scoring"
	"github.com/selivandex/market-intel/pkg/logger"
	"github.com/selivandex/market-intel/pkg/models"
)

// fileSignal is the wire form of one signal in the signals JSON file.
// Timestamps are simulated: last_updated is "today" and data_asof is derived
// from an offset so local fixtures never go stale on their own.
type fileSignal struct {
	SignalID          string   `json:"signal_id"`
	Version           string   `json:"version"`
	Market            string   `json:"market"`
	Category          string   `json:"category"`
	Name              string   `json:"name"`
	Direction         string   `json:"direction"`
	Confidence        string   `json:"confidence"`
	SignalType        string   `json:"signal_type"`
	ValidityWindow    string   `json:"validity_window"`
	DataAsOfOffset    int      `json:"data_asof_offset_days"`
	Explanation       string   `json:"explanation"`
	Definition        string   `json:"definition"`
	Source            string   `json:"source"`
	KeyDriver         string   `json:"key_driver"`
	DecayBehavior     string   `json:"decay_behavior"`
	RelatedSignalIDs  []string `json:"related_signal_ids"`
	RelatedMarkets    []string `json:"related_markets"`
	LastUpdatedOffset int      `json:"last_updated_offset_days"`
}

// FileProvider loads signals from a JSON file with hot-reload support.
// Reloads are triggered by fsnotify events and backed by an mtime check, so
// editing the file locally is picked up without a restart.
type FileProvider struct {
	path string
	now  func() time.Time

	mu          sync.RWMutex
	cached      []models.Signal
	cachedMtime time.Time
	cachedDay   time.Time

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFileProvider creates a provider reading from path and starts watching
// the containing directory for changes
func NewFileProvider(path string) (*FileProvider, error) {
	p := &FileProvider{
		path: path,
		now:  time.Now,
		done: make(chan struct{}),
	}

	if _, err := p.load(); err != nil {
		return nil, fmt.Errorf("failed to load signals file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory: editors replace files on save, which drops a
	// watch placed on the file itself
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch signals directory: %w", err)
	}
	p.watcher = watcher
	go p.watch()

	return p, nil
}

// CurrentSignals returns the current signal set, reloading when the file changed
func (p *FileProvider) CurrentSignals(ctx context.Context) ([]models.Signal, error) {
	info, err := os.Stat(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat signals file: %w", err)
	}

	p.mu.RLock()
	fresh := p.cached != nil &&
		info.ModTime().Equal(p.cachedMtime) &&
		models.DateOnly(p.now()).Equal(p.cachedDay)
	signals := p.cached
	p.mu.RUnlock()

	if fresh {
		out := make([]models.Signal, len(signals))
		copy(out, signals)
		return out, nil
	}

	return p.load()
}

// Reload forces a reload from disk regardless of cache state
func (p *FileProvider) Reload() ([]models.Signal, error) {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
	return p.load()
}

// Close stops the file watcher
func (p *FileProvider) Close() error {
	close(p.done)
	if p.watcher != nil {
		return p.watcher.Close()
	}
	return nil
}

func (p *FileProvider) watch() {
	for {
		select {
		case <-p.done:
			return
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(p.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if _, err := p.load(); err != nil {
				// Keep serving the previous set; a half-written file
				// must not take the provider down
				logger.Warn("signals file reload failed",
					zap.String("path", p.path),
					zap.Error(err),
				)
				continue
			}
			logger.Info("signals file reloaded",
				zap.String("path", p.path),
			)
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("signals file watcher error", zap.Error(err))
		}
	}
}

func (p *FileProvider) load() ([]models.Signal, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signals file: %w", err)
	}

	info, err := os.Stat(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat signals file: %w", err)
	}

	signals, err := decodeSignals(data, p.now())
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cached = signals
	p.cachedMtime = info.ModTime()
	p.cachedDay = models.DateOnly(p.now())
	p.mu.Unlock()

	out := make([]models.Signal, len(signals))
	copy(out, signals)
	return out, nil
}

// decodeSignals parses and validates the signals file. Unknown enum values
// fail the whole load: bad data must not enter the core.
func decodeSignals(data []byte, now time.Time) ([]models.Signal, error) {
	var raw []fileSignal
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse signals file: %w", err)
	}

	today := models.DateOnly(now)
	signals := make([]models.Signal, 0, len(raw))

	for _, fs := range raw {
		direction, err := models.ParseDirection(fs.Direction)
		if err != nil {
			return nil, fmt.Errorf("signal %s: %w", fs.SignalID, err)
		}
		confidence, err := models.ParseConfidence(fs.Confidence)
		if err != nil {
			return nil, fmt.Errorf("signal %s: %w", fs.SignalID, err)
		}

		signalType := models.SignalTypeTactical
		if fs.SignalType != "" {
			signalType, err = models.ParseSignalType(fs.SignalType)
			if err != nil {
				return nil, fmt.Errorf("signal %s: %w", fs.SignalID, err)
			}
		}

		validity := models.ValidityDaily
		if fs.ValidityWindow != "" {
			validity, err = models.ParseValidityWindow(fs.ValidityWindow)
			if err != nil {
				return nil, fmt.Errorf("signal %s: %w", fs.SignalID, err)
			}
		}

		version := fs.Version
		if version == "" {
			version = "v1"
		}

		asOfOffset := fs.DataAsOfOffset
		if asOfOffset <= 0 {
			asOfOffset = 1
		}

		signal := models.Signal{
			SignalID:         fs.SignalID,
			Version:          version,
			Market:           fs.Market,
			Category:         fs.Category,
			Name:             fs.Name,
			SignalType:       signalType,
			ValidityWindow:   validity,
			Direction:        direction,
			Confidence:       confidence,
			LastUpdated:      today.AddDate(0, 0, -fs.LastUpdatedOffset),
			DataAsOf:         today.AddDate(0, 0, -asOfOffset),
			Explanation:      fs.Explanation,
			Definition:       fs.Definition,
			Source:           fs.Source,
			KeyDriver:        fs.KeyDriver,
			DecayBehavior:    fs.DecayBehavior,
			RelatedSignalIDs: fs.RelatedSignalIDs,
			RelatedMarkets:   fs.RelatedMarkets,
		}
		signal.Score = scoring.Score(signal)

		if err := signal.Validate(); err != nil {
			return nil, err
		}
		signals = append(signals, signal)
	}

	return signals, nil
}
