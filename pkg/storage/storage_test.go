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
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (context.Context, *BillyStorage) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background()), NewMemory()
}

func TestListEntries(t *testing.T) {
	ctx, st := newTestStorage(t)

	require.NoError(t, st.WriteFile(ctx, "/src/b.txt", []byte("b")))
	require.NoError(t, st.WriteFile(ctx, "/src/a.txt", []byte("a")))
	require.NoError(t, st.CreateDirectories(ctx, "/src/c_alto"))

	entries, err := st.ListEntries(ctx, "/src")
	require.NoError(t, err, "listing should succeed")
	assert.Equal(t, []string{"/src/a.txt", "/src/b.txt", "/src/c_alto"}, entries, "entries should be sorted full paths")

	assert.True(t, st.IsDirectory(ctx, "/src/c_alto"))
	assert.False(t, st.IsDirectory(ctx, "/src/a.txt"))
	assert.False(t, st.IsDirectory(ctx, "/missing"))

	_, err = st.ListEntries(ctx, "/missing")
	require.Error(t, err, "listing a missing directory should fail")
}

func TestCopyDirectory(t *testing.T) {
	ctx, st := newTestStorage(t)

	require.NoError(t, st.WriteFile(ctx, "/src/one.tif", []byte("1")))
	require.NoError(t, st.WriteFile(ctx, "/src/nested/two.tif", []byte("2")))
	require.NoError(t, st.WriteFile(ctx, "/dst/tif/existing.tif", []byte("x")))

	require.NoError(t, st.CopyDirectory(ctx, "/src", "/dst/tif", false))

	for p, want := range map[string]string{
		"/dst/tif/one.tif":        "1",
		"/dst/tif/nested/two.tif": "2",
		"/dst/tif/existing.tif":   "x",
	} {
		got, err := st.ReadFile(ctx, p)
		require.NoError(t, err, "reading %s", p)
		assert.Equal(t, want, string(got), "content of %s", p)
	}
}

func TestCopyFileCreatesParent(t *testing.T) {
	ctx, st := newTestStorage(t)

	require.NoError(t, st.WriteFile(ctx, "/a/file.xml", []byte("<x/>")))
	require.NoError(t, st.CopyFile(ctx, "/a/file.xml", "/b/c/file.xml"))

	got, err := st.ReadFile(ctx, "/b/c/file.xml")
	require.NoError(t, err)
	assert.Equal(t, "<x/>", string(got))
}

func TestCreateDirectoriesIsIdempotent(t *testing.T) {
	ctx, st := newTestStorage(t)

	require.NoError(t, st.CreateDirectories(ctx, "/out/txt"))
	require.NoError(t, st.CreateDirectories(ctx, "/out/txt"), "second create should not fail")
	assert.True(t, st.IsDirectory(ctx, "/out/txt"))
}

func TestDeleteFile(t *testing.T) {
	ctx, st := newTestStorage(t)

	require.NoError(t, st.CreateFile(ctx, "/tmp/scratch/obj.xml"))
	require.NoError(t, st.CreateFile(ctx, "/tmp/scratch/obj_anchor.xml"))

	require.NoError(t, st.DeleteFile(ctx, "/tmp/scratch/obj.xml"))
	assert.False(t, st.Exists(ctx, "/tmp/scratch/obj.xml"))
	assert.True(t, st.Exists(ctx, "/tmp/scratch/obj_anchor.xml"))

	require.NoError(t, st.DeleteFile(ctx, "/tmp/scratch"))
	assert.False(t, st.Exists(ctx, "/tmp/scratch"))

	require.NoError(t, st.DeleteFile(ctx, "/tmp/never-there"), "missing path should not fail")
	require.Error(t, st.DeleteFile(ctx, "/"), "root must be refused")
}

func TestCopyDirectoryOnDisk(t *testing.T) {
	ctx, _ := newTestStorage(t)
	st := NewOS()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(dir+"/src", 0o755))
	require.NoError(t, os.WriteFile(dir+"/src/p1.txt", []byte("page"), 0o644))

	require.NoError(t, st.CopyDirectory(ctx, dir+"/src", dir+"/dst", true))

	got, err := os.ReadFile(dir + "/dst/p1.txt")
	require.NoError(t, err)
	assert.Equal(t, "page", string(got))
}
