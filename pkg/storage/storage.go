// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"context"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 💾 Storage is the filesystem surface used by the export pipeline.
// Paths are slash separated and absolute within the backing filesystem.
type Storage interface {
	// Queries
	Exists(ctx context.Context, p string) bool
	IsDirectory(ctx context.Context, p string) bool
	ListEntries(ctx context.Context, p string) ([]string, error)
	ReadFile(ctx context.Context, p string) ([]byte, error)

	// Mutations
	CopyFile(ctx context.Context, src, dst string) error
	CopyDirectory(ctx context.Context, src, dst string, preserveTimestamps bool) error
	CreateDirectories(ctx context.Context, p string) error
	CreateFile(ctx context.Context, p string) error
	WriteFile(ctx context.Context, p string, content []byte) error
	DeleteFile(ctx context.Context, p string) error
}

const (
	dirMode  os.FileMode = 0o755
	fileMode os.FileMode = 0o644
)

// 🗄️ BillyStorage implements Storage on top of a billy filesystem
type BillyStorage struct {
	fs billy.Filesystem
}

var _ Storage = (*BillyStorage)(nil)

// 🏭 New wraps an existing billy filesystem
func New(fs billy.Filesystem) *BillyStorage {
	return &BillyStorage{fs: fs}
}

// 🏭 NewOS returns storage rooted at the host filesystem root
func NewOS() *BillyStorage {
	return New(osfs.New("/"))
}

// 🏭 NewMemory returns storage backed by an in-memory filesystem
func NewMemory() *BillyStorage {
	return New(memfs.New())
}

// Filesystem exposes the underlying billy filesystem
func (s *BillyStorage) Filesystem() billy.Filesystem {
	return s.fs
}

func (s *BillyStorage) Exists(ctx context.Context, p string) bool {
	_, err := s.fs.Stat(p)
	return err == nil
}

func (s *BillyStorage) IsDirectory(ctx context.Context, p string) bool {
	fi, err := s.fs.Stat(p)
	if err != nil {
		return false
	}
	return fi.IsDir()
}

// 📋 ListEntries returns the full paths of the direct children of p, sorted by name
func (s *BillyStorage) ListEntries(ctx context.Context, p string) ([]string, error) {
	infos, err := s.fs.ReadDir(p)
	if err != nil {
		return nil, errors.Errorf("reading directory %s: %w", p, err)
	}

	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		names = append(names, fi.Name())
	}
	sort.Strings(names)

	entries := make([]string, 0, len(names))
	for _, name := range names {
		entries = append(entries, path.Join(p, name))
	}
	return entries, nil
}

func (s *BillyStorage) ReadFile(ctx context.Context, p string) ([]byte, error) {
	f, err := s.fs.Open(p)
	if err != nil {
		return nil, errors.Errorf("opening %s: %w", p, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", p, err)
	}
	return data, nil
}

// 📄 CopyFile copies a single file, creating the parent directory when missing
func (s *BillyStorage) CopyFile(ctx context.Context, src, dst string) error {
	zerolog.Ctx(ctx).Trace().Str("src", src).Str("dst", dst).Msg("copying file")

	if err := s.fs.MkdirAll(path.Dir(dst), dirMode); err != nil {
		return errors.Errorf("creating parent of %s: %w", dst, err)
	}

	in, err := s.fs.Open(src)
	if err != nil {
		return errors.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := s.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return errors.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Errorf("copying %s to %s: %w", src, dst, err)
	}

	if err := out.Close(); err != nil {
		return errors.Errorf("closing %s: %w", dst, err)
	}
	return nil
}

// 📁 CopyDirectory copies src recursively into dst, merging with anything already there
func (s *BillyStorage) CopyDirectory(ctx context.Context, src, dst string, preserveTimestamps bool) error {
	if err := s.fs.MkdirAll(dst, dirMode); err != nil {
		return errors.Errorf("creating %s: %w", dst, err)
	}

	infos, err := s.fs.ReadDir(src)
	if err != nil {
		return errors.Errorf("reading directory %s: %w", src, err)
	}

	for _, fi := range infos {
		from := path.Join(src, fi.Name())
		to := path.Join(dst, fi.Name())

		if fi.IsDir() {
			if err := s.CopyDirectory(ctx, from, to, preserveTimestamps); err != nil {
				return err
			}
			continue
		}

		if err := s.CopyFile(ctx, from, to); err != nil {
			return err
		}

		if preserveTimestamps {
			if err := s.chtimes(to, fi); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *BillyStorage) chtimes(p string, fi os.FileInfo) error {
	ch, ok := s.fs.(billy.Change)
	if !ok {
		return nil
	}
	if err := ch.Chtimes(p, fi.ModTime(), fi.ModTime()); err != nil {
		return errors.Errorf("preserving timestamps on %s: %w", p, err)
	}
	return nil
}

// 📁 CreateDirectories is create-if-absent and never fails on an existing directory
func (s *BillyStorage) CreateDirectories(ctx context.Context, p string) error {
	if err := s.fs.MkdirAll(p, dirMode); err != nil {
		return errors.Errorf("creating directories %s: %w", p, err)
	}
	return nil
}

// CreateFile creates an empty file, truncating an existing one
func (s *BillyStorage) CreateFile(ctx context.Context, p string) error {
	return s.WriteFile(ctx, p, nil)
}

func (s *BillyStorage) WriteFile(ctx context.Context, p string, content []byte) error {
	if err := s.fs.MkdirAll(path.Dir(p), dirMode); err != nil {
		return errors.Errorf("creating parent of %s: %w", p, err)
	}
	if err := util.WriteFile(s.fs, p, content, fileMode); err != nil {
		return errors.Errorf("writing %s: %w", p, err)
	}
	return nil
}

// 🗑️ DeleteFile removes a file or a directory tree. Missing paths are not an error.
func (s *BillyStorage) DeleteFile(ctx context.Context, p string) error {
	if strings.TrimSpace(p) == "" || p == "/" {
		return errors.Errorf("refusing to delete %q", p)
	}
	if err := util.RemoveAll(s.fs, p); err != nil && !os.IsNotExist(err) {
		return errors.Errorf("deleting %s: %w", p, err)
	}
	return nil
}
