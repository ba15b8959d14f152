package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when no --config is given.
const DefaultConfigFile = "vocal.yaml"

// Settings is the complete runtime configuration. It is read once at start-up
// and treated as read-only afterwards.
type Settings struct {
	DocumentsFile string                `yaml:"documents_file,omitempty"`
	Paths         PathSettings          `yaml:"paths"`
	Audio         AudioSettings         `yaml:"audio"`
	Transcription TranscriptionSettings `yaml:"transcription"`
	Extraction    ExtractionSettings    `yaml:"extraction"`
	Pipeline      PipelineSettings      `yaml:"pipeline"`
	Metrics       MetricsSettings       `yaml:"metrics"`
	History       HistorySettings       `yaml:"history"`
	Server        ServerSettings        `yaml:"server"`
	Log           LogSettings           `yaml:"log"`
}

// PathSettings is the on-disk layout. Empty directories default to
// subdirectories of DataRoot.
type PathSettings struct {
	DataRoot   string `yaml:"data_root" validate:"required"`
	AudioRoot  string `yaml:"audio_root" validate:"required"`
	TextDir    string `yaml:"text_dir" validate:"required"`
	RecordsDir string `yaml:"records_dir" validate:"required"`
	ReportsDir string `yaml:"reports_dir" validate:"required"`
}

type AudioSettings struct {
	SourceExtensions   []string `yaml:"source_extensions" validate:"min=1,dive,startswith=."`
	CanonicalExtension string   `yaml:"canonical_extension" validate:"required,startswith=."`
	FFmpegPath         string   `yaml:"ffmpeg_path" validate:"required"`
	FFprobePath        string   `yaml:"ffprobe_path"`
	Quality            string   `yaml:"quality"`
	Parallel           int      `yaml:"parallel" validate:"min=1,max=32"`
}

type TranscriptionSettings struct {
	DefaultProvider string         `yaml:"default_provider" validate:"oneof=openai google"`
	Timeout         time.Duration  `yaml:"timeout" validate:"gt=0"`
	OpenAI          OpenAISettings `yaml:"openai"`
	Google          GoogleSettings `yaml:"google"`
}

type OpenAISettings struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model" validate:"required"`
	BaseURL     string  `yaml:"base_url" validate:"omitempty,url"`
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=1"`
}

type GoogleSettings struct {
	APIKey       string `yaml:"api_key"`
	Backend      string `yaml:"backend" validate:"oneof=speech gemini"`
	Model        string `yaml:"model" validate:"required"`
	BaseURL      string `yaml:"base_url" validate:"omitempty,url"`
	LanguageCode string `yaml:"language_code"`
}

type ExtractionSettings struct {
	BaseURL      string            `yaml:"base_url" validate:"omitempty,url"`
	Endpoints    map[string]string `yaml:"endpoints" validate:"dive,url"`
	Timeout      time.Duration     `yaml:"timeout" validate:"gt=0"`
	MaxRetries   int               `yaml:"max_retries" validate:"min=0,max=10"`
	RetryBackoff time.Duration     `yaml:"retry_backoff"`
	AuthHeader   string            `yaml:"auth_header"`
	AuthToken    string            `yaml:"auth_token"`
}

type PipelineSettings struct {
	ChainAfterTranscription bool `yaml:"chain_after_transcription"`
}

type MetricsSettings struct {
	Textfile string `yaml:"textfile"`
}

// HistorySettings selects where run history is kept. Driver "none"
// disables it; an empty sqlite3 DSN means <data_root>/history.db.
type HistorySettings struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite3 postgres none"`
	DSN    string `yaml:"dsn" validate:"required_if=Driver postgres"`
}

// ServerSettings configures `vocal serve`.
type ServerSettings struct {
	Addr         string        `yaml:"addr" validate:"required"`
	Mode         string        `yaml:"mode" validate:"oneof=debug release test"`
	ReadTimeout  time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gte=0"`
}

type LogSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
}

// Default returns the built-in configuration.
func Default() *Settings {
	return &Settings{
		Paths: PathSettings{DataRoot: DefaultDataRoot},
		Audio: AudioSettings{
			SourceExtensions:   []string{DefaultSourceExtension},
			CanonicalExtension: DefaultCanonicalExtension,
			FFmpegPath:         DefaultFFmpegPath,
			FFprobePath:        DefaultFFprobePath,
			Quality:            DefaultMP3Quality,
			Parallel:           1,
		},
		Transcription: TranscriptionSettings{
			DefaultProvider: DefaultProvider,
			OpenAI:          OpenAISettings{Model: DefaultOpenAIModel},
			Google: GoogleSettings{
				Backend:      "speech",
				LanguageCode: DefaultGoogleLanguage,
			},
		},
		Extraction: ExtractionSettings{
			Endpoints:    map[string]string{},
			RetryBackoff: DefaultExtractionRetryBackoff,
		},
		History: HistorySettings{Driver: DefaultHistoryDriver},
		Server:  ServerSettings{Addr: DefaultServerAddr, Mode: DefaultServerMode},
	}
}

// Load builds the settings: defaults, then the YAML file (with ${VAR}
// expansion), then environment overrides. A missing default file is not an
// error; a missing explicit file is. The returned warnings are meant to be
// logged by the caller.
func Load(path string) (*Settings, []string, error) {
	var warnings []string

	if loaded, err := LoadEnv(); err != nil {
		return nil, nil, err
	} else if loaded != "" {
		warnings = append(warnings, fmt.Sprintf("loaded environment variables from %s", loaded))
	}

	settings := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if err := settings.mergeFile(path); err != nil {
		if !explicit && os.IsNotExist(err) {
			// built-in defaults only
		} else {
			return nil, warnings, err
		}
	}

	settings.applyEnvironment()
	if err := settings.finalize(); err != nil {
		return nil, warnings, err
	}

	warnings = append(warnings, CheckAPIKeys(&APIKeys{
		OpenAI: settings.Transcription.OpenAI.APIKey,
		Google: settings.Transcription.Google.APIKey,
	})...)
	return settings, warnings, nil
}

// mergeFile decodes a YAML file over the current values.
func (s *Settings) mergeFile(path string) error {
	data, err := os.ReadFile(os.ExpandEnv(path))
	if err != nil {
		return err
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), s); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// applyEnvironment lets well-known environment variables override the file.
func (s *Settings) applyEnvironment() {
	keys := GetAPIKeys()
	if keys.OpenAI != "" {
		s.Transcription.OpenAI.APIKey = keys.OpenAI
	}
	if keys.Google != "" {
		s.Transcription.Google.APIKey = keys.Google
	}
	s.Paths.DataRoot = getEnvOrDefault("VOCAL_DATA_ROOT", s.Paths.DataRoot)
	s.Transcription.DefaultProvider = getEnvOrDefault("VOCAL_PROVIDER", s.Transcription.DefaultProvider)
	s.Extraction.BaseURL = getEnvOrDefault("EXTRACTION_BASE_URL", getEnvOrDefault("N8N_BASE_URL", s.Extraction.BaseURL))
	s.Extraction.AuthToken = getEnvOrDefault("EXTRACTION_AUTH_TOKEN", s.Extraction.AuthToken)
	s.History.Driver = getEnvOrDefault("VOCAL_HISTORY_DRIVER", s.History.Driver)
	s.History.DSN = getEnvOrDefault("VOCAL_HISTORY_DSN", s.History.DSN)
	s.Server.Addr = getEnvOrDefault("VOCAL_SERVER_ADDR", s.Server.Addr)
	s.Log.Level = getEnvOrDefault("LOG_LEVEL", s.Log.Level)
}

// finalize fills derived defaults and validates.
func (s *Settings) finalize() error {
	s.setDefaults()
	if err := validateStruct(s); err != nil {
		return err
	}
	if err := ValidateTimeout(s.Transcription.Timeout, "transcription"); err != nil {
		return err
	}
	return ValidateTimeout(s.Extraction.Timeout, "extraction")
}

func (s *Settings) setDefaults() {
	p := &s.Paths
	if p.DataRoot == "" {
		p.DataRoot = DefaultDataRoot
	}
	if abs, err := filepath.Abs(p.DataRoot); err == nil {
		p.DataRoot = abs
	}
	p.AudioRoot = lo.Ternary(p.AudioRoot == "", filepath.Join(p.DataRoot, DefaultAudioDir), p.AudioRoot)
	p.TextDir = lo.Ternary(p.TextDir == "", filepath.Join(p.DataRoot, DefaultTextDir), p.TextDir)
	p.RecordsDir = lo.Ternary(p.RecordsDir == "", filepath.Join(p.DataRoot, DefaultRecordsDir), p.RecordsDir)
	p.ReportsDir = lo.Ternary(p.ReportsDir == "", filepath.Join(p.DataRoot, DefaultReportsDir), p.ReportsDir)

	a := &s.Audio
	a.SourceExtensions = lo.Uniq(lo.Map(a.SourceExtensions, func(ext string, _ int) string {
		return normalizeExt(ext)
	}))
	a.CanonicalExtension = normalizeExt(a.CanonicalExtension)
	if a.Parallel == 0 {
		a.Parallel = 1
	}
	if a.Quality == "" {
		a.Quality = DefaultMP3Quality
	}

	t := &s.Transcription
	t.DefaultProvider = strings.ToLower(t.DefaultProvider)
	if t.Timeout == 0 {
		t.Timeout = GetProviderDefaults(t.DefaultProvider).Timeout
	}
	if t.OpenAI.Model == "" {
		t.OpenAI.Model = DefaultOpenAIModel
	}
	if t.Google.Backend == "" {
		t.Google.Backend = "speech"
	}
	if t.Google.Model == "" {
		t.Google.Model = lo.Ternary(t.Google.Backend == "gemini", DefaultGeminiModel, DefaultGoogleSpeechModel)
	}

	e := &s.Extraction
	defaults := GetProviderDefaults("extraction")
	if e.Timeout == 0 {
		e.Timeout = defaults.Timeout
	}
	if e.RetryBackoff == 0 {
		e.RetryBackoff = defaults.Backoff
	}
	if e.Endpoints == nil {
		e.Endpoints = map[string]string{}
	}
	e.BaseURL = strings.TrimRight(e.BaseURL, "/")

	h := &s.History
	h.Driver = strings.ToLower(lo.Ternary(h.Driver == "", DefaultHistoryDriver, h.Driver))
	if h.Driver == "sqlite3" && h.DSN == "" {
		h.DSN = filepath.Join(p.DataRoot, DefaultHistoryFile)
	}

	srv := &s.Server
	srv.Addr = lo.Ternary(srv.Addr == "", DefaultServerAddr, srv.Addr)
	srv.Mode = strings.ToLower(lo.Ternary(srv.Mode == "", DefaultServerMode, srv.Mode))
	if srv.ReadTimeout == 0 {
		srv.ReadTimeout = DefaultServerReadTimeout
	}
}

// Endpoint returns the extraction URL for a document type: an explicit
// endpoint wins, otherwise <base_url>/webhook/<type>.
func (e ExtractionSettings) Endpoint(documentType string) (string, error) {
	if url, ok := e.Endpoints[documentType]; ok && url != "" {
		return url, nil
	}
	if e.BaseURL == "" {
		return "", fmt.Errorf("no extraction endpoint configured for %s (set extraction.base_url or extraction.endpoints.%s)", documentType, documentType)
	}
	return e.BaseURL + "/webhook/" + documentType, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
