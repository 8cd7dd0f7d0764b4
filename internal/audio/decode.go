package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// ErrUnknownFormat is returned when asset bytes match no supported container.
var ErrUnknownFormat = errors.New("audio: unknown asset format")

// maxAssetBytes bounds a single fetched asset.
const maxAssetBytes = 32 << 20

// resampleQuality is the beep interpolation window used when an asset's rate
// differs from the engine's.
const resampleQuality = 4

// Fetcher retrieves raw asset bytes by URL or path.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches http(s) URLs.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher with a bounded client timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: 30 * time.Second}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return data, nil
}

// FileFetcher reads local paths, with or without a file:// prefix.
type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
	if err != nil {
		return nil, fmt.Errorf("read asset: %w", err)
	}
	return data, nil
}

// SchemeFetcher routes http(s) URLs to HTTP and everything else to Local.
type SchemeFetcher struct {
	HTTP  Fetcher
	Local Fetcher
}

// DefaultFetcher handles both remote URLs and local files.
func DefaultFetcher() *SchemeFetcher {
	return &SchemeFetcher{HTTP: NewHTTPFetcher(), Local: FileFetcher{}}
}

func (f *SchemeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return f.HTTP.Fetch(ctx, url)
	}
	return f.Local.Fetch(ctx, url)
}

// sniffFormat names the container from its leading bytes.
func sniffFormat(data []byte) string {
	switch {
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return "wav"
	case len(data) >= 4 && string(data[:4]) == "OggS":
		return "vorbis"
	case len(data) >= 4 && string(data[:4]) == "fLaC":
		return "flac"
	case len(data) >= 3 && string(data[:3]) == "ID3":
		return "mp3"
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return "mp3"
	}
	return ""
}

// DecodeClip decodes a whole asset into a clip at sampleRate.
func DecodeClip(data []byte, sampleRate int) (*Clip, error) {
	rc := io.NopCloser(bytes.NewReader(data))
	var (
		s      beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	kind := sniffFormat(data)
	switch kind {
	case "wav":
		s, format, err = wav.Decode(rc)
	case "vorbis":
		s, format, err = vorbis.Decode(rc)
	case "flac":
		s, format, err = flac.Decode(rc)
	case "mp3":
		s, format, err = mp3.Decode(rc)
	default:
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	defer s.Close()

	var src beep.Streamer = s
	if int(format.SampleRate) != sampleRate {
		src = beep.Resample(resampleQuality, format.SampleRate, beep.SampleRate(sampleRate), s)
	}
	clip := &Clip{}
	buf := make([][2]float64, 1024)
	for {
		n, ok := src.Stream(buf)
		clip.Samples = append(clip.Samples, buf[:n]...)
		if !ok {
			break
		}
	}
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("stream %s: %w", kind, err)
	}
	if clip.Len() == 0 {
		return nil, fmt.Errorf("decode %s: empty clip", kind)
	}
	return clip, nil
}
