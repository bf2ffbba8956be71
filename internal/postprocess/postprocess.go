// Package postprocess turns raw vendor output into delivery-ready assets:
// download, transcode, and upload to object storage under content-addressed
// keys.
package postprocess

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"adforge-server/internal/domain"
	"adforge-server/internal/providers"
	"adforge-server/internal/storage"
)

// maxDownloadBytes caps how much of a vendor asset is read into memory.
const maxDownloadBytes = 512 << 20

type Processor struct {
	store  storage.ObjectStore
	http   *http.Client
	ffmpeg *FFmpeg
	log    zerolog.Logger
}

type Output struct {
	ResultURL    string
	ThumbnailURL string
}

func NewProcessor(store storage.ObjectStore, ffmpeg *FFmpeg, log zerolog.Logger) *Processor {
	return &Processor{
		store:  store,
		http:   &http.Client{Timeout: 5 * time.Minute},
		ffmpeg: ffmpeg,
		log:    log,
	}
}

// Process downloads the vendor result, applies the per-media transform and
// uploads the asset. Keys derive from the content hash, so reprocessing the
// same vendor output lands on the same key and URL.
func (p *Processor) Process(ctx context.Context, job *domain.Job, res providers.Result) (Output, error) {
	if res.MediaURL == "" {
		return Output{}, fmt.Errorf("postprocess: job %s result has no media url: %w", job.ID, domain.ErrProviderFailure)
	}
	raw, err := p.download(ctx, res.MediaURL)
	if err != nil {
		return Output{}, err
	}

	var out Output
	switch mediaClass(res.MIME) {
	case "image":
		out, err = p.processImage(ctx, job, raw)
	case "audio":
		out, err = p.processAudio(ctx, job, raw)
	case "video":
		out, err = p.processVideo(ctx, job, raw, res.ThumbnailURL)
	default:
		url, putErr := p.store.Put(ctx, assetKey(job.OwnerID, raw, extFromMIME(res.MIME)), res.MIME, raw)
		out, err = Output{ResultURL: url}, putErr
	}
	if err != nil {
		return Output{}, err
	}
	p.log.Info().
		Str("job_id", job.ID).
		Str("mime", res.MIME).
		Int("bytes", len(raw)).
		Msg("asset processed")
	return out, nil
}

func (p *Processor) processImage(ctx context.Context, job *domain.Job, raw []byte) (Output, error) {
	full, err := TranscodeImage(raw, DefaultMaxDimension, DefaultWebPQuality)
	if err != nil {
		return Output{}, err
	}
	thumb, err := TranscodeImage(raw, ThumbnailDimension, DefaultWebPQuality)
	if err != nil {
		return Output{}, err
	}
	owner := job.OwnerID
	resultURL, err := p.store.Put(ctx, assetKey(owner, full, ".webp"), "image/webp", full)
	if err != nil {
		return Output{}, err
	}
	thumbURL, err := p.store.Put(ctx, thumbKey(owner, thumb), "image/webp", thumb)
	if err != nil {
		return Output{}, err
	}
	return Output{ResultURL: resultURL, ThumbnailURL: thumbURL}, nil
}

func (p *Processor) processAudio(ctx context.Context, job *domain.Job, raw []byte) (Output, error) {
	data := raw
	if p.ffmpeg != nil {
		normalized, err := p.ffmpeg.NormalizeAudio(ctx, raw)
		if err != nil {
			return Output{}, err
		}
		data = normalized
	}
	url, err := p.store.Put(ctx, assetKey(job.OwnerID, data, ".mp3"), "audio/mpeg", data)
	if err != nil {
		return Output{}, err
	}
	return Output{ResultURL: url}, nil
}

func (p *Processor) processVideo(ctx context.Context, job *domain.Job, raw []byte, thumbnailURL string) (Output, error) {
	data := raw
	if p.ffmpeg != nil {
		remuxed, err := p.ffmpeg.RemuxVideo(ctx, raw)
		if err != nil {
			return Output{}, err
		}
		data = remuxed
	}
	owner := job.OwnerID
	resultURL, err := p.store.Put(ctx, assetKey(owner, data, ".mp4"), "video/mp4", data)
	if err != nil {
		return Output{}, err
	}
	out := Output{ResultURL: resultURL}
	if thumbnailURL != "" {
		thumbRaw, err := p.download(ctx, thumbnailURL)
		if err == nil {
			if thumb, terr := TranscodeImage(thumbRaw, ThumbnailDimension, DefaultWebPQuality); terr == nil {
				if url, perr := p.store.Put(ctx, thumbKey(owner, thumb), "image/webp", thumb); perr == nil {
					out.ThumbnailURL = url
				}
			}
		} else {
			p.log.Warn().Str("job_id", job.ID).Err(err).Msg("thumbnail download failed")
		}
	}
	return out, nil
}

func (p *Processor) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("postprocess: download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("postprocess: download http %d: %w", resp.StatusCode, domain.ErrProviderFailure)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("postprocess: read body: %w", err)
	}
	return data, nil
}

func assetKey(owner string, data []byte, ext string) string {
	return fmt.Sprintf("assets/%s/%s%s", owner, contentHash(data), ext)
}

func thumbKey(owner string, data []byte) string {
	return fmt.Sprintf("thumbs/%s/%s.webp", owner, contentHash(data))
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func mediaClass(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mt = mimeType
	}
	if i := strings.Index(mt, "/"); i > 0 {
		return mt[:i]
	}
	return mt
}

func extFromMIME(mimeType string) string {
	switch mediaClass(mimeType) {
	case "image":
		return ".png"
	case "video":
		return ".mp4"
	case "audio":
		return ".mp3"
	}
	return ".bin"
}
