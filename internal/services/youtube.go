package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	yt "github.com/kkdai/youtube/v2"
)

var youtubeURLRe = regexp.MustCompile(`^(https?://)?(www\.|m\.)?(youtube\.com|youtu\.be)/`)

// YouTubeService reads video metadata so video materials can default their
// minimum watch time to the video's length.
type YouTubeService struct {
	client  *yt.Client
	timeout time.Duration
}

func NewYouTubeService() *YouTubeService {
	return &YouTubeService{
		client:  &yt.Client{},
		timeout: 15 * time.Second,
	}
}

func IsYouTubeURL(url string) bool {
	return youtubeURLRe.MatchString(url)
}

// VideoDurationSeconds returns the length of a YouTube video.
func (s *YouTubeService) VideoDurationSeconds(ctx context.Context, url string) (int, error) {
	videoID, err := yt.ExtractVideoID(url)
	if err != nil {
		return 0, fmt.Errorf("invalid YouTube URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	video, err := s.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch video metadata: %w", err)
	}
	return int(video.Duration.Seconds()), nil
}
