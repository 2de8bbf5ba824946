package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	var gotFilename string
	var gotBody string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		gotFilename = header.Filename
		gotBody = string(data)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"fileUrl":"http://files.example/abc.jpg"}`))
	}))
	defer srv.Close()

	u := New(srv.URL)
	url, err := u.Upload(context.Background(), "photo.jpg", strings.NewReader("jpeg bytes"))

	require.NoError(t, err)
	assert.Equal(t, "http://files.example/abc.jpg", url)
	assert.Equal(t, "photo.jpg", gotFilename)
	assert.Equal(t, "jpeg bytes", gotBody)
}

func TestUploadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	u := New(srv.URL)
	_, err := u.Upload(context.Background(), "photo.jpg", strings.NewReader("x"))

	var uploadErr *Error
	require.ErrorAs(t, err, &uploadErr)
	assert.NotNil(t, uploadErr.Unwrap())
}

func TestUploadTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	u := New(srv.URL)
	_, err := u.Upload(context.Background(), "photo.jpg", strings.NewReader("x"))

	var uploadErr *Error
	assert.True(t, errors.As(err, &uploadErr))
}

func TestUploadEmptyFileURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	u := New(srv.URL)
	_, err := u.Upload(context.Background(), "photo.jpg", strings.NewReader("x"))

	var uploadErr *Error
	assert.True(t, errors.As(err, &uploadErr))
}
