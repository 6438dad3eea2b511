package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func mp4Bytes() []byte {
	payload := []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2")
	return append(payload, bytes.Repeat([]byte{0}, 64)...)
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("video", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["video"][0]
}

func TestUploadAudioStoresDetectedType(t *testing.T) {
	storage := newMemoryStorage()
	svc := NewMediaService(storage, 1, 1, testLogger())

	resp, err := svc.UploadAudio(context.Background(), "iv-1", "q-1", validAudio())
	require.NoError(t, err)
	require.Equal(t, "https://media.example.com/interviews/iv-1/audio/audio_iv-1_q-1.wav", resp.URL)
	require.Equal(t, "audio/wav", resp.MimeType)
	require.EqualValues(t, len(wavBytes()), resp.SizeBytes)
	require.Equal(t, 1, storage.count())
}

func TestUploadAudioAcceptsDataURLAndRawBase64(t *testing.T) {
	svc := NewMediaService(newMemoryStorage(), 1, 1, testLogger())

	_, err := svc.UploadAudio(context.Background(), "iv-1", "q-1", "data:audio/wav;base64,"+validAudio())
	require.NoError(t, err)

	raw := base64.RawStdEncoding.EncodeToString(wavBytes())
	_, err = svc.UploadAudio(context.Background(), "iv-1", "q-2", raw)
	require.NoError(t, err)
}

func TestUploadAudioRejections(t *testing.T) {
	storage := newMemoryStorage()
	svc := NewMediaService(storage, 1, 1, testLogger())
	ctx := context.Background()

	_, err := svc.UploadAudio(ctx, "iv-1", "q-1", "not-base64-at-all!!")
	require.ErrorIs(t, err, ErrInvalidAudio)

	_, err = svc.UploadAudio(ctx, "iv-1", "q-1", "")
	require.ErrorIs(t, err, ErrMediaRequired)

	text := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("plain text answer ", 10)))
	_, err = svc.UploadAudio(ctx, "iv-1", "q-1", text)
	require.ErrorIs(t, err, ErrMediaTypeNotAllowed)

	large := append(wavBytes(), bytes.Repeat([]byte{0}, 1<<20)...)
	_, err = svc.UploadAudio(ctx, "iv-1", "q-1", base64.StdEncoding.EncodeToString(large))
	require.ErrorIs(t, err, ErrMediaTooLarge)
	require.Equal(t, KindValidation, KindOf(err))

	require.Zero(t, storage.count())
}

func TestUploadAudioStorageFailure(t *testing.T) {
	storage := newMemoryStorage()
	storage.err = errOracleDown
	svc := NewMediaService(storage, 1, 1, testLogger())

	_, err := svc.UploadAudio(context.Background(), "iv-1", "q-1", validAudio())
	require.ErrorIs(t, err, ErrMediaStorage)
	require.Equal(t, KindStoreFailure, KindOf(err))
}

func TestUploadVideo(t *testing.T) {
	storage := newMemoryStorage()
	svc := NewMediaService(storage, 1, 1, testLogger())
	ctx := context.Background()

	resp, err := svc.UploadVideo(ctx, "iv-1", fileHeader(t, "chunk.mp4", mp4Bytes()))
	require.NoError(t, err)
	require.Equal(t, "video/mp4", resp.MimeType)
	require.True(t, strings.HasPrefix(resp.URL, "https://media.example.com/interviews/iv-1/video/chunk_"))
	require.True(t, strings.HasSuffix(resp.URL, ".mp4"))

	_, err = svc.UploadVideo(ctx, "iv-1", nil)
	require.ErrorIs(t, err, ErrMediaRequired)

	_, err = svc.UploadVideo(ctx, "iv-1", fileHeader(t, "notes.txt", []byte("just some notes about the interview")))
	require.ErrorIs(t, err, ErrMediaTypeNotAllowed)

	_, err = svc.UploadVideo(ctx, "iv-1", fileHeader(t, "big.mp4", append(mp4Bytes(), bytes.Repeat([]byte{0}, 1<<20)...)))
	require.ErrorIs(t, err, ErrMediaTooLarge)

	require.Equal(t, 1, storage.count())
}
