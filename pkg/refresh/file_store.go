package refresh

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
)

// lockRetryDelay is how often a blocked lock is retried.
const lockRetryDelay = 50 * time.Millisecond

// FileStore keeps tokens in a YAML file guarded by a lock file, so that several CLI processes
// can share one token.
type FileStore struct {
	path string
}

// fileTokens is the on-disk layout: one token per key.
type fileTokens struct {
	Tokens map[string]*Token `yaml:"tokens"`
}

// NewFileStore creates a store backed by path. The file and its directory are created on the
// first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the token file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements TokenStore.
func (s *FileStore) Load(ctx context.Context, key string) (*Token, error) {
	var token *Token

	err := s.withLock(ctx, func() error {
		tokens, err := s.read()
		if err != nil {
			return err
		}

		token = tokens.Tokens[key]

		return nil
	})
	if err != nil {
		return nil, err
	}

	if token == nil {
		return nil, constants.ErrTokenNotFound
	}

	return token, nil
}

// Save implements TokenStore.
func (s *FileStore) Save(ctx context.Context, key string, token *Token) error {
	return s.withLock(ctx, func() error {
		tokens, err := s.read()
		if err != nil {
			return err
		}

		tokens.Tokens[key] = token

		return s.write(tokens)
	})
}

// Delete implements TokenStore.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	return s.withLock(ctx, func() error {
		tokens, err := s.read()
		if err != nil {
			return err
		}

		if _, ok := tokens.Tokens[key]; !ok {
			return nil
		}

		delete(tokens.Tokens, key)

		return s.write(tokens)
	})
}

func (s *FileStore) withLock(ctx context.Context, fn func() error) error {
	err := os.MkdirAll(filepath.Dir(s.path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")

	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("locking token file %s: %w", s.path, err)
	}

	if !locked {
		return fmt.Errorf("locking token file %s: %w", s.path, ctx.Err())
	}

	defer func() {
		_ = lock.Unlock()
	}()

	return fn()
}

func (s *FileStore) read() (*fileTokens, error) {
	tokens := &fileTokens{}

	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	if len(data) > 0 {
		err = yaml.Unmarshal(data, tokens)
		if err != nil {
			return nil, fmt.Errorf("decoding token file: %w", err)
		}
	}

	if tokens.Tokens == nil {
		tokens.Tokens = map[string]*Token{}
	}

	return tokens, nil
}

func (s *FileStore) write(tokens *fileTokens) error {
	data, err := yaml.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("encoding token file: %w", err)
	}

	temp := s.path + ".tmp"

	err = os.WriteFile(temp, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	err = os.Rename(temp, s.path)
	if err != nil {
		return fmt.Errorf("replacing token file: %w", err)
	}

	return nil
}
