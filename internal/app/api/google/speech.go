package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"vocal-assistant/internal/app/api/provider"
	"vocal-assistant/internal/app/document"
	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/model"
)

// DefaultSpeechURL is the Cloud Speech-to-Text endpoint root.
const DefaultSpeechURL = "https://speech.googleapis.com"

// MaxInlineAudio is the largest payload speech:recognize accepts inline.
const MaxInlineAudio = 10 << 20

type SpeechConfig struct {
	APIKey       string
	Model        string
	BaseURL      string
	LanguageCode string
	Timeout      time.Duration
}

// SpeechTranscriber implements STT using the Cloud Speech-to-Text REST API.
// Synchronous recognition only handles short recordings (about one minute).
type SpeechTranscriber struct {
	config  SpeechConfig
	client  *http.Client
	catalog *document.Catalog
	logger  *zap.Logger
}

func NewSpeechTranscriber(cfg SpeechConfig, catalog *document.Catalog, client *http.Client, logger *zap.Logger) (*SpeechTranscriber, error) {
	if cfg.APIKey == "" {
		return nil, provider.NewError(model.ProviderGoogle, provider.CodeMissingAPIKey, "GOOGLE_API_KEY is not set", false, errors.ErrMissingAPIKey)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultSpeechURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = "default"
	}
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpeechTranscriber{config: cfg, client: client, catalog: catalog, logger: logger}, nil
}

func (g *SpeechTranscriber) Name() model.ProviderName {
	return model.ProviderGoogle
}

type recognitionConfig struct {
	Encoding                   string          `json:"encoding"`
	SampleRateHertz            int             `json:"sampleRateHertz,omitempty"`
	LanguageCode               string          `json:"languageCode"`
	Model                      string          `json:"model,omitempty"`
	EnableAutomaticPunctuation bool            `json:"enableAutomaticPunctuation"`
	SpeechContexts             []speechContext `json:"speechContexts,omitempty"`
}

type speechContext struct {
	Phrases []string `json:"phrases"`
}

type recognizeRequest struct {
	Config recognitionConfig `json:"config"`
	Audio  struct {
		Content string `json:"content"`
	} `json:"audio"`
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
		LanguageCode string `json:"languageCode"`
	} `json:"results"`
}

type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Encoding maps a file format or MIME type to a RecognitionConfig encoding
// and a sample rate (0 lets the service detect it).
func Encoding(format, mime string) (string, int, bool) {
	switch {
	case format == "mp3" || mime == "audio/mpeg":
		return "MP3", 0, true
	case format == "wav" || mime == "audio/wav" || mime == "audio/x-wav":
		return "LINEAR16", 0, true
	case format == "flac" || mime == "audio/flac":
		return "FLAC", 0, true
	case format == "ogg" || format == "opus" || format == "oga" || mime == "audio/ogg":
		return "OGG_OPUS", 48000, true
	case format == "webm" || mime == "audio/webm":
		return "WEBM_OPUS", 48000, true
	}
	return "", 0, false
}

// Transcribe converts an audio file to text using Google Cloud Speech-to-Text.
func (g *SpeechTranscriber) Transcribe(ctx context.Context, docType model.DocumentType, audio model.AudioReference) (*model.TranscriptionResult, error) {
	if err := provider.CheckAudio(model.ProviderGoogle, audio, MaxInlineAudio); err != nil {
		return nil, err
	}

	encoding, sampleRate, ok := Encoding(audio.Format(), detectMIME(audio))
	if !ok {
		e := provider.NewError(model.ProviderGoogle, provider.CodeInvalidAudio, fmt.Sprintf("unsupported audio format %q", audio.Format()), false, nil)
		e.Suggestions = []string{"Run convert-audio to produce an mp3 file"}
		return nil, e
	}

	data, err := os.ReadFile(audio.Path)
	if err != nil {
		return nil, provider.NewError(model.ProviderGoogle, provider.CodeFileNotFound, "read audio file", false, err)
	}

	req := recognizeRequest{Config: recognitionConfig{
		Encoding:                   encoding,
		SampleRateHertz:            sampleRate,
		LanguageCode:               g.config.LanguageCode,
		Model:                      g.config.Model,
		EnableAutomaticPunctuation: true,
	}}
	if def := definition(g.catalog, docType); def != nil {
		if req.Config.LanguageCode == "" {
			req.Config.LanguageCode = def.Language
		}
		if len(def.Phrases) > 0 {
			req.Config.SpeechContexts = []speechContext{{Phrases: def.Phrases}}
		}
	}
	if req.Config.LanguageCode == "" {
		req.Config.LanguageCode = "en-US"
	}
	req.Audio.Content = base64.StdEncoding.EncodeToString(data)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, provider.NewError(model.ProviderGoogle, provider.CodeUnknown, "marshal request", false, err)
	}

	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	endpoint := g.config.BaseURL + "/v1p1beta1/speech:recognize?key=" + url.QueryEscape(g.config.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, provider.NewError(model.ProviderGoogle, provider.CodeUnknown, "create request", false, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	g.logger.Debug("sending audio to google speech", zap.String("file", audio.Name), zap.String("encoding", encoding), zap.String("language", req.Config.LanguageCode))

	resp, err := g.client.Do(httpReq)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, provider.NewError(model.ProviderGoogle, provider.CodeTimeout, "request timed out", true, err)
		}
		return nil, provider.NewError(model.ProviderGoogle, provider.CodeUnknown, "send request", true, redact(err, g.config.APIKey))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NewError(model.ProviderGoogle, provider.CodeUnknown, "read response", true, err)
	}

	if resp.StatusCode != http.StatusOK {
		message := http.StatusText(resp.StatusCode)
		var errResp apiErrorBody
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			message = errResp.Error.Message
		}
		return nil, provider.FromStatus(model.ProviderGoogle, resp.StatusCode, message, nil)
	}

	var result recognizeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, provider.NewError(model.ProviderGoogle, provider.CodeAPIError, "parse response", false, err)
	}

	var (
		transcripts []string
		confSum     float64
		language    = req.Config.LanguageCode
	)
	for _, r := range result.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		best := r.Alternatives[0]
		transcripts = append(transcripts, strings.TrimSpace(best.Transcript))
		confSum += best.Confidence
		if r.LanguageCode != "" {
			language = r.LanguageCode
		}
	}
	if len(transcripts) == 0 {
		return nil, provider.NewError(model.ProviderGoogle, provider.CodeEmptyResult, "no speech recognized", false, nil)
	}

	return &model.TranscriptionResult{
		Text:         strings.Join(transcripts, " "),
		Provider:     model.ProviderGoogle,
		DocumentType: docType,
		Language:     language,
		Confidence:   confSum / float64(len(transcripts)),
		Model:        g.config.Model,
		Source:       audio.Path,
	}, nil
}

// redact removes the API key from transport errors, which echo the URL.
func redact(err error, key string) error {
	escaped := url.QueryEscape(key)
	if key == "" || !strings.Contains(err.Error(), escaped) {
		return err
	}
	return stderrors.New(strings.ReplaceAll(err.Error(), escaped, "REDACTED"))
}
