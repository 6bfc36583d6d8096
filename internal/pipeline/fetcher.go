package pipeline

import (
	"context"

	"ytscribe/internal/services/ytdlp"
)

type ytdlpFetcher struct {
	svc *ytdlp.Service
}

// NewYTDLPFetcher adapts a yt-dlp service to the Fetcher interface.
func NewYTDLPFetcher(svc *ytdlp.Service) Fetcher {
	return ytdlpFetcher{svc: svc}
}

func (f ytdlpFetcher) Fetch(ctx context.Context, url string) (Download, error) {
	audio, err := f.svc.FetchAudio(ctx, url)
	if err != nil {
		return Download{}, err
	}
	return Download{Path: audio.Path, Title: audio.Title, Release: audio.Cleanup}, nil
}
