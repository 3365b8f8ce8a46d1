package filestore

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	recordv1 "github.com/muhammadchandra19/economy/internal/domain/record/v1"
	"github.com/muhammadchandra19/economy/pkg/logger"
)

// Options names the directory of each record kind.
type Options struct {
	UserDir   string
	GuildDir  string
	GlobalDir string
}

// Store keeps each record as <dir>/<id>.json. Writes go to a temporary file that is
// renamed over the target, so a crash never leaves a half-written record.
type Store struct {
	dirs   map[recordv1.Kind]string
	logger logger.Interface
}

var _ recordv1.Driver = (*Store)(nil)

// New creates the directories if needed and returns a Store.
func New(opts Options, log logger.Interface) (*Store, error) {
	dirs := map[recordv1.Kind]string{
		recordv1.KindUser:   opts.UserDir,
		recordv1.KindGuild:  opts.GuildDir,
		recordv1.KindGlobal: opts.GlobalDir,
	}
	for kind, dir := range dirs {
		if dir == "" {
			return nil, fmt.Errorf("%w: no directory for %s records", recordv1.ErrIO, kind)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", recordv1.ErrIO, err)
		}
	}

	return &Store{dirs: dirs, logger: log}, nil
}

func (s *Store) path(loc recordv1.Locator) (string, error) {
	if err := loc.Validate(); err != nil {
		return "", err
	}
	return filepath.Join(s.dirs[loc.Kind], loc.ID+".json"), nil
}

// Load reads the file of loc.
func (s *Store) Load(ctx context.Context, loc recordv1.Locator) ([]byte, error) {
	path, err := s.path(loc)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", recordv1.ErrNotFound, loc.Key())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", recordv1.ErrIO, loc.Key(), err)
	}
	return data, nil
}

// Save replaces the file of loc with data.
func (s *Store) Save(ctx context.Context, loc recordv1.Locator, data []byte) error {
	path, err := s.path(loc)
	if err != nil {
		return err
	}

	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("%w: %s: %v", recordv1.ErrIO, loc.Key(), err)
	}

	s.logger.DebugContext(ctx, "record file written", logger.Field{Key: "path", Value: path})
	return nil
}

func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
