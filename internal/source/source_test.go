package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const doc = `{"execution_summary": {"total_evaluations": 3}}`

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close() //nolint:errcheck
	return enc.EncodeAll(data, nil)
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in      string
		want    Location
		wantErr bool
	}{
		{"-", Location{Stdin: true}, false},
		{"results.json", Location{Path: "results.json"}, false},
		{"azblob://runs/2026/nightly.json", Location{Container: "runs", Blob: "2026/nightly.json"}, false},
		{"azblob://runs", Location{}, true},
		{"azblob:///blob.json", Location{}, true},
		{"azblob://runs/", Location{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocation(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBlobRef)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestReadAll(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"plain", []byte(doc)},
		{"gzip", gzipBytes(t, []byte(doc))},
		{"zstd", zstdBytes(t, []byte(doc))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadAll(bytes.NewReader(tt.data))
			require.NoError(t, err)
			assert.Equal(t, doc, string(got))
		})
	}
}

func TestReadAll_ShortInput(t *testing.T) {
	got, err := ReadAll(strings.NewReader("{}"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got))

	got, err = ReadAll(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadAll_CorruptGzip(t *testing.T) {
	_, err := ReadAll(bytes.NewReader([]byte{0x1f, 0x8b, 0x00}))
	require.Error(t, err)
}

func TestReadAll_TooLarge(t *testing.T) {
	big := bytes.Repeat([]byte(" "), MaxDocumentSize+1)
	_, err := ReadAll(bytes.NewReader(gzipBytes(t, big)))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestLoader_File(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "run.json")
	compressed := filepath.Join(dir, "run.json.zst")
	require.NoError(t, os.WriteFile(plain, []byte(doc), 0o644))
	require.NoError(t, os.WriteFile(compressed, zstdBytes(t, []byte(doc)), 0o644))

	l := NewLoader(Options{})
	for _, path := range []string{plain, compressed} {
		got, err := l.Load(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, doc, string(got))
	}

	_, err := l.Load(context.Background(), filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_Stdin(t *testing.T) {
	l := NewLoader(Options{Stdin: bytes.NewReader(gzipBytes(t, []byte(doc)))})
	got, err := l.Load(context.Background(), "-")
	require.NoError(t, err)
	assert.Equal(t, doc, string(got))
}

func TestLoader_NoBlobAccount(t *testing.T) {
	l := NewLoader(Options{})
	_, err := l.Load(context.Background(), "azblob://runs/nightly.json")
	assert.ErrorIs(t, err, ErrNoBlobAccount)
}

func TestLoader_InvalidBlobRef(t *testing.T) {
	l := NewLoader(Options{BlobAccountURL: "https://acct.blob.core.windows.net/"})
	_, err := l.Load(context.Background(), "azblob://runs")
	assert.ErrorIs(t, err, ErrInvalidBlobRef)
}

func blobLoader(client blobDownloader) *Loader {
	l := NewLoader(Options{BlobAccountURL: "https://acct.blob.core.windows.net/"})
	l.blobs = func() (blobDownloader, error) { return client, nil }
	return l
}

func TestLoader_Blob(t *testing.T) {
	ctrl := gomock.NewController(t)
	clientMock := NewMockblobDownloader(ctrl)

	var resp azblob.DownloadStreamResponse
	resp.Body = io.NopCloser(bytes.NewReader(gzipBytes(t, []byte(doc))))
	clientMock.EXPECT().DownloadStream(gomock.Any(), "runs", "2026/nightly.json.gz", nil).Return(resp, nil)

	got, err := blobLoader(clientMock).Load(context.Background(), "azblob://runs/2026/nightly.json.gz")
	require.NoError(t, err)
	assert.Equal(t, doc, string(got))
}

func TestLoader_BlobError(t *testing.T) {
	ctrl := gomock.NewController(t)
	clientMock := NewMockblobDownloader(ctrl)

	downloadErr := errors.New("403 AuthorizationFailure")
	clientMock.EXPECT().DownloadStream(gomock.Any(), "runs", "nightly.json", nil).Return(azblob.DownloadStreamResponse{}, downloadErr)

	_, err := blobLoader(clientMock).Load(context.Background(), "azblob://runs/nightly.json")
	require.ErrorIs(t, err, downloadErr)
	assert.Contains(t, err.Error(), "downloading azblob://runs/nightly.json")
}

func TestNewBlobClient(t *testing.T) {
	client, err := newBlobClient("https://acct.blob.core.windows.net/?sv=2022-11-02&sig=abc", nil)
	require.NoError(t, err)
	assert.IsType(t, &azblob.Client{}, client)
}
