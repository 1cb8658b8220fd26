package exportstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/puckdata/goal-export/internal/domain/goal"
	"github.com/puckdata/goal-export/internal/domain/schedule"
	"github.com/puckdata/goal-export/internal/platform/logging"
)

// ExportFileName is the canonical per-game artifact written next to
// the tracking payloads.
const ExportFileName = "pbp_boxscore.json"

// Store persists game artifacts under {root}/{YYYY-MM-DD}/{gameID}.
// All writes are full-file replacements, so re-running a game yields
// identical bytes.
type Store struct {
	root   string
	logger *logging.Logger
}

func New(root string, logger *logging.Logger) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, crerr.New("output root must not be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, crerr.Wrapf(err, "create output root %s", root)
	}
	return &Store{root: root, logger: logger}, nil
}

func (s *Store) Root() string { return s.root }

func (s *Store) EnsureGameDir(date time.Time, id schedule.GameID) (string, error) {
	if date.IsZero() {
		return "", crerr.Newf("game %d has no date to key the output on", id)
	}
	dir := filepath.Join(s.root, date.Format("2006-01-02"), id.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", crerr.Wrapf(err, "create game directory %s", dir)
	}
	return dir, nil
}

// SaveTracking writes the raw payload untouched. The body is whatever
// the sprite host answered with, valid JSON or not.
func (s *Store) SaveTracking(dir string, id goal.EventID, payload []byte) error {
	path := filepath.Join(dir, fmt.Sprintf("%d", id))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return crerr.Wrapf(err, "write tracking payload %s", path)
	}
	s.logger.Debug("tracking payload written", "path", path, "bytes", len(payload))
	return nil
}

func (s *Store) SaveExport(dir string, export goal.GameExport) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(export); err != nil {
		return crerr.Wrap(err, "encode export")
	}

	path := filepath.Join(dir, ExportFileName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return crerr.Wrapf(err, "write export %s", path)
	}
	s.logger.Debug("export written", "path", path, "goals", len(export.Goals))
	return nil
}
