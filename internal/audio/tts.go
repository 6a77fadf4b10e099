// Package audio fetches and caches spoken pronunciations of lesson items.
package audio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"edufunkids/internal/logger"
)

const (
	ttsRequestTimeout = 10 * time.Second
	googleTTSURL      = "https://translate.google.com/translate_tts"

	// URLPrefix is where the server exposes AUDIO_DIR
	URLPrefix = "/static/audio/"
)

// TTSService provides text-to-speech functionality
type TTSService struct {
	audioDir string
	language string
	baseURL  string
	client   *http.Client
	log      *logger.Logger
}

// NewTTSService creates a TTS service writing MP3 files into audioDir
func NewTTSService(audioDir, language string, log *logger.Logger) *TTSService {
	return &TTSService{
		audioDir: audioDir,
		language: language,
		baseURL:  googleTTSURL,
		client:   &http.Client{Timeout: ttsRequestTimeout},
		log:      log.With("service", "TTSService"),
	}
}

// FileName is the stable file name for a phrase. Phrases include Arabic and
// emoji, so the name is derived from a hash rather than the text.
func (s *TTSService) FileName(text string) string {
	sum := sha256.Sum256([]byte(s.language + "|" + strings.TrimSpace(text)))
	return "tts_" + hex.EncodeToString(sum[:])[:16] + ".mp3"
}

// URL is the public path of a phrase's audio file
func (s *TTSService) URL(text string) string {
	return URLPrefix + s.FileName(text)
}

// GenerateAudioFile converts text to speech and saves it as MP3, reusing an
// existing file. Returns the filename (not full path) on success.
func (s *TTSService) GenerateAudioFile(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty text")
	}

	filename := s.FileName(text)
	path := filepath.Join(s.audioDir, filename)
	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	if err := s.fetch(ctx, text, path); err != nil {
		return "", fmt.Errorf("failed to generate audio: %w", err)
	}
	return filename, nil
}

// fetch downloads from Google Translate's text-to-speech endpoint
func (s *TTSService) fetch(ctx context.Context, text, outputPath string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", s.language)
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len([]rune(text))))

	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// Set user agent (required by Google)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// Write to a temp file first so a failed download never leaves a partial MP3 behind
	tmp, err := os.CreateTemp(s.audioDir, "tts-*.part")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return os.Rename(tmp.Name(), outputPath)
}

// BatchGenerate makes sure every phrase has an audio file, running at most
// limit downloads at once. It returns the files that were produced; the first
// error is returned after all other downloads finish.
func (s *TTSService) BatchGenerate(ctx context.Context, phrases []string, limit int) (map[string]string, error) {
	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(phrases))
		g       errgroup.Group
	)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, phrase := range phrases {
		g.Go(func() error {
			filename, err := s.GenerateAudioFile(ctx, phrase)
			if err != nil {
				s.log.Warn("pronunciation audio failed", "phrase", phrase, "error", err)
				return fmt.Errorf("failed to generate audio for %q: %w", phrase, err)
			}
			mu.Lock()
			results[phrase] = filename
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	s.log.Info("pronunciation audio ready", "generated", len(results), "requested", len(phrases))
	return results, err
}
