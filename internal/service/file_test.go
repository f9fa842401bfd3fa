package service

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filevault/filevault/internal/model"
)

func TestCreateValidationOrder(t *testing.T) {
	f := newFixture(t)
	user := f.registerUser(t, "bob@example.com")

	tests := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"missing name", CreateInput{Type: model.FileTypeFile, Data: "aGk="}, ErrMissingName},
		{"missing type", CreateInput{Name: "a"}, ErrMissingType},
		{"invalid type", CreateInput{Name: "a", Type: "symlink", Data: "aGk="}, ErrMissingType},
		{"missing data", CreateInput{Name: "a", Type: model.FileTypeFile}, ErrMissingData},
		{"folder needs no data", CreateInput{Name: "a", Type: model.FileTypeFolder}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.fileService.Create(user.ID, tt.in)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestCreateFolderWritesNoBlob(t *testing.T) {
	f := newFixture(t)
	user := f.registerUser(t, "bob@example.com")

	folder, err := f.fileService.Create(user.ID, CreateInput{
		Name: "docs",
		Type: model.FileTypeFolder,
	})
	require.NoError(t, err)
	assert.Nil(t, folder.LocalPath)
	assert.Equal(t, model.RootParentID, folder.ParentID)
}

func TestCreateFileRoundTripsBytes(t *testing.T) {
	f := newFixture(t)
	user := f.registerUser(t, "bob@example.com")

	content := []byte("Hello Filevault")
	file, err := f.fileService.Create(user.ID, CreateInput{
		Name: "hello.txt",
		Type: model.FileTypeFile,
		Data: base64.StdEncoding.EncodeToString(content),
	})
	require.NoError(t, err)
	require.NotNil(t, file.LocalPath)

	got, err := os.ReadFile(*file.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestCreateParentRules(t *testing.T) {
	f := newFixture(t)
	user := f.registerUser(t, "bob@example.com")

	folder, err := f.fileService.Create(user.ID, CreateInput{
		Name: "docs",
		Type: model.FileTypeFolder,
	})
	require.NoError(t, err)

	plain, err := f.fileService.Create(user.ID, CreateInput{
		Name: "a.txt",
		Type: model.FileTypeFile,
		Data: "aGk=",
	})
	require.NoError(t, err)

	// Nonexistent parent
	_, err = f.fileService.Create(user.ID, CreateInput{
		Name:     "b.txt",
		Type:     model.FileTypeFile,
		Data:     "aGk=",
		ParentID: model.ParentID("no-such-id"),
	})
	assert.ErrorIs(t, err, ErrParentNotFound)

	// Parent exists but is not a folder
	_, err = f.fileService.Create(user.ID, CreateInput{
		Name:     "b.txt",
		Type:     model.FileTypeFile,
		Data:     "aGk=",
		ParentID: model.ParentID(plain.ID),
	})
	assert.ErrorIs(t, err, ErrParentNotFolder)

	// Proper folder parent
	nested, err := f.fileService.Create(user.ID, CreateInput{
		Name:     "b.txt",
		Type:     model.FileTypeFile,
		Data:     "aGk=",
		ParentID: model.ParentID(folder.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ParentID(folder.ID), nested.ParentID)
}

func TestCreateImageEnqueuesJob(t *testing.T) {
	f := newFixture(t)
	user := f.registerUser(t, "bob@example.com")

	file, err := f.fileService.Create(user.ID, CreateInput{
		Name: "pic.png",
		Type: model.FileTypeImage,
		Data: "aGk=",
	})
	require.NoError(t, err)

	n, err := f.queue.Len()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	msg, err := f.queue.Dequeue(t.Context())
	require.NoError(t, err)

	var job model.ThumbnailJob
	require.NoError(t, json.Unmarshal(msg.Payload, &job))
	assert.Equal(t, user.ID, job.UserID)
	assert.Equal(t, file.ID, job.FileID)
}

func TestCreateNonImageEnqueuesNothing(t *testing.T) {
	f := newFixture(t)
	user := f.registerUser(t, "bob@example.com")

	_, err := f.fileService.Create(user.ID, CreateInput{
		Name: "a.txt",
		Type: model.FileTypeFile,
		Data: "aGk=",
	})
	require.NoError(t, err)

	n, err := f.queue.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPublishUnpublishPair(t *testing.T) {
	f := newFixture(t)
	user := f.registerUser(t, "bob@example.com")

	file, err := f.fileService.Create(user.ID, CreateInput{
		Name: "a.txt",
		Type: model.FileTypeFile,
		Data: "aGk=",
	})
	require.NoError(t, err)
	require.False(t, file.Public)

	published, err := f.fileService.Publish(user.ID, file.ID)
	require.NoError(t, err)
	assert.True(t, published.Public)

	unpublished, err := f.fileService.Unpublish(user.ID, file.ID)
	require.NoError(t, err)
	assert.False(t, unpublished.Public)
}

func TestPublishOwnershipMerged(t *testing.T) {
	f := newFixture(t)
	owner := f.registerUser(t, "owner@example.com")
	other := f.registerUser(t, "other@example.com")

	file, err := f.fileService.Create(owner.ID, CreateInput{
		Name: "a.txt",
		Type: model.FileTypeFile,
		Data: "aGk=",
	})
	require.NoError(t, err)

	_, err = f.fileService.Publish(other.ID, file.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.fileService.Publish(owner.ID, "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContentVisibility(t *testing.T) {
	f := newFixture(t)
	owner := f.registerUser(t, "owner@example.com")
	other := f.registerUser(t, "other@example.com")

	file, err := f.fileService.Create(owner.ID, CreateInput{
		Name: "a.txt",
		Type: model.FileTypeFile,
		Data: base64.StdEncoding.EncodeToString([]byte("secret")),
	})
	require.NoError(t, err)

	// Owner reads fine.
	content, err := f.fileService.Content(owner.ID, file.ID, "")
	require.NoError(t, err)
	got, err := io.ReadAll(content.Data)
	require.NoError(t, err)
	require.NoError(t, content.Data.Close())
	assert.Equal(t, "secret", string(got))
	assert.Equal(t, "text/plain; charset=utf-8", content.MIME)

	// Anonymous and non-owner reads report not-found, never forbidden.
	_, err = f.fileService.Content("", file.ID, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.fileService.Content(other.ID, file.ID, "")
	assert.ErrorIs(t, err, ErrNotFound)

	// Once public, anyone reads it.
	_, err = f.fileService.Publish(owner.ID, file.ID)
	require.NoError(t, err)

	content, err = f.fileService.Content("", file.ID, "")
	require.NoError(t, err)
	require.NoError(t, content.Data.Close())
}

func TestContentFolderRejected(t *testing.T) {
	f := newFixture(t)
	user := f.registerUser(t, "bob@example.com")

	folder, err := f.fileService.Create(user.ID, CreateInput{
		Name: "docs",
		Type: model.FileTypeFolder,
	})
	require.NoError(t, err)

	_, err = f.fileService.Content(user.ID, folder.ID, "")
	assert.ErrorIs(t, err, ErrFolderHasNoContent)
}

func TestContentInvalidSize(t *testing.T) {
	f := newFixture(t)

	// Invalid size reports the same whether or not the file exists.
	_, err := f.fileService.Content("", "no-such-id", "300")
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestContentMissingVariant(t *testing.T) {
	f := newFixture(t)
	user := f.registerUser(t, "bob@example.com")

	file, err := f.fileService.Create(user.ID, CreateInput{
		Name: "pic.png",
		Type: model.FileTypeImage,
		Data: "aGk=",
	})
	require.NoError(t, err)

	// Thumbnails not generated yet.
	_, err = f.fileService.Content(user.ID, file.ID, "100")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContentDefaultMIME(t *testing.T) {
	f := newFixture(t)
	user := f.registerUser(t, "bob@example.com")

	file, err := f.fileService.Create(user.ID, CreateInput{
		Name: "blob-without-extension",
		Type: model.FileTypeFile,
		Data: "aGk=",
	})
	require.NoError(t, err)

	content, err := f.fileService.Content(user.ID, file.ID, "")
	require.NoError(t, err)
	require.NoError(t, content.Data.Close())
	assert.Equal(t, "application/octet-stream", content.MIME)
}
