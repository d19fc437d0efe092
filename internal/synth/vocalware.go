package synth

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/joeyxworks/anki-flashcard-builder/internal/download"
)

const (
	// DefaultVocalWareURL is the TTS generation endpoint.
	DefaultVocalWareURL = "https://www.vocalware.com/tts/gen.php"

	// Fixed engine, language and voice ids. The pipeline always speaks
	// English with the same voice, so these are not configurable.
	vocalwareEngineID   = 3
	vocalwareLanguageID = 1
	vocalwareVoiceID    = 5

	vocalwareTimeout = 15 * time.Second
)

// ErrSynthesisFailed is returned when the TTS API rejects a request or
// cannot be reached.
var ErrSynthesisFailed = errors.New("speech synthesis failed")

// VocalWareProvider implements Provider for the VocalWare HTTP API. Every
// request carries an md5 checksum over its parameters and the account's
// secret phrase; the API answers with a redirect chain ending at the
// generated audio file.
type VocalWareProvider struct {
	apiID        string
	accountID    string
	secretPhrase string
	baseURL      string
	httpClient   *http.Client
	fetcher      *download.Fetcher
	logger       *zap.Logger
}

// NewVocalWareProvider creates a VocalWare TTS provider.
func NewVocalWareProvider(config *Config, fetcher *download.Fetcher, logger *zap.Logger) *VocalWareProvider {
	return &VocalWareProvider{
		apiID:        config.APIID,
		accountID:    config.AccountID,
		secretPhrase: config.SecretPhrase,
		baseURL:      DefaultVocalWareURL,
		httpClient:   &http.Client{Timeout: vocalwareTimeout},
		fetcher:      fetcher,
		logger:       logger,
	}
}

// SignedURL builds the generation URL for text. The CS parameter is an md5
// checksum over the engine, language and voice ids, the text, the account
// id, the API id and the secret phrase, concatenated in that order.
func (p *VocalWareProvider) SignedURL(text string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%d%d%d%s%s%s%s",
		vocalwareEngineID, vocalwareLanguageID, vocalwareVoiceID,
		text, p.accountID, p.apiID, p.secretPhrase)))

	q := url.Values{}
	q.Set("EID", strconv.Itoa(vocalwareEngineID))
	q.Set("LID", strconv.Itoa(vocalwareLanguageID))
	q.Set("VID", strconv.Itoa(vocalwareVoiceID))
	q.Set("TXT", text)
	q.Set("ACC", p.accountID)
	q.Set("API", p.apiID)
	q.Set("CS", hex.EncodeToString(sum[:]))

	return p.baseURL + "?" + q.Encode()
}

// SynthesizeURL asks the API to generate speech for text and returns the
// URL the audio can be downloaded from: the final URL after redirects,
// which points at the generated file rather than the generation endpoint.
func (p *VocalWareProvider) SynthesizeURL(ctx context.Context, text string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.SignedURL(text), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Error("speech synthesis request rejected",
			zap.String("text", text),
			zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: status %d", ErrSynthesisFailed, resp.StatusCode)
	}

	return resp.Request.URL.String(), nil
}

// GenerateAudio synthesizes text and downloads the result to outputFile.
func (p *VocalWareProvider) GenerateAudio(ctx context.Context, text, outputFile string) error {
	audioURL, err := p.SynthesizeURL(ctx, text)
	if err != nil {
		return err
	}
	return p.fetcher.FetchTo(ctx, audioURL, outputFile)
}

// Name returns the provider name.
func (p *VocalWareProvider) Name() string {
	return "vocalware"
}

// IsAvailable checks that all three VocalWare credentials are configured.
func (p *VocalWareProvider) IsAvailable() error {
	switch {
	case p.apiID == "":
		return errors.New("VocalWare API id not configured")
	case p.accountID == "":
		return errors.New("VocalWare account id not configured")
	case p.secretPhrase == "":
		return errors.New("VocalWare secret phrase not configured")
	}
	return nil
}
