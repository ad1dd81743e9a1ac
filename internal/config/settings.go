package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type SessionConfig struct {
	MaxTurns      int   `mapstructure:"max_turns"`
	TimeoutSecs   int64 `mapstructure:"timeout_secs"`
	SweepInterval int64 `mapstructure:"sweep_interval_secs"`
}

func (s SessionConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

func (s SessionConfig) SweepEvery() time.Duration {
	return time.Duration(s.SweepInterval) * time.Second
}

// PipelineConfig bounds the shared worker pool plus per-stage timeouts.
// The LLM timeout is deliberately longer than ASR/TTS to accommodate
// generation latency.
type PipelineConfig struct {
	Workers        int   `mapstructure:"workers"`
	ASRTimeoutSecs int64 `mapstructure:"asr_timeout_secs"`
	LLMTimeoutSecs int64 `mapstructure:"llm_timeout_secs"`
	TTSTimeoutSecs int64 `mapstructure:"tts_timeout_secs"`
}

func (p PipelineConfig) ASRTimeout() time.Duration {
	return time.Duration(p.ASRTimeoutSecs) * time.Second
}

func (p PipelineConfig) LLMTimeout() time.Duration {
	return time.Duration(p.LLMTimeoutSecs) * time.Second
}

func (p PipelineConfig) TTSTimeout() time.Duration {
	return time.Duration(p.TTSTimeoutSecs) * time.Second
}

type ASRConfig struct {
	WhisperURL string `mapstructure:"whisper_url"`
	Language   string `mapstructure:"language"`
}

type LLMConfig struct {
	Provider     string   `mapstructure:"provider"` // ollama | openai | gemini
	OllamaURLs   []string `mapstructure:"ollama_urls"`
	Model        string   `mapstructure:"model"`
	OpenAIAPIKey string   `mapstructure:"open_ai_api_key"`
	GeminiAPIKey string   `mapstructure:"gemini_api_key"`
	MaxTokens    int      `mapstructure:"max_tokens"`
}

type TTSConfig struct {
	PiperURL string `mapstructure:"piper_url"`
	Voice    string `mapstructure:"voice"`
}

type FilesConfig struct {
	TempDir        string `mapstructure:"temp_dir"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

type Settings struct {
	AppName  string         `mapstructure:"app_name"`
	Version  string         `mapstructure:"version"`
	Env      string         `mapstructure:"env"`
	Debug    bool           `mapstructure:"debug"`
	Server   ServerConfig   `mapstructure:"server"`
	Session  SessionConfig  `mapstructure:"session"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	ASR      ASRConfig      `mapstructure:"asr"`
	LLM      LLMConfig      `mapstructure:"llm"`
	TTS      TTSConfig      `mapstructure:"tts"`
	Files    FilesConfig    `mapstructure:"files"`
}

func setDefaults() {
	viper.SetDefault("app_name", "voxgate")
	viper.SetDefault("version", "1.0.0")
	viper.SetDefault("debug", false)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("session.max_turns", 5)
	viper.SetDefault("session.timeout_secs", 3600)
	viper.SetDefault("session.sweep_interval_secs", 600)
	viper.SetDefault("pipeline.workers", 3)
	viper.SetDefault("pipeline.asr_timeout_secs", 30)
	viper.SetDefault("pipeline.llm_timeout_secs", 120)
	viper.SetDefault("pipeline.tts_timeout_secs", 30)
	viper.SetDefault("asr.whisper_url", "http://whisper:9000")
	viper.SetDefault("asr.language", "en")
	viper.SetDefault("llm.provider", "ollama")
	viper.SetDefault("llm.ollama_urls", []string{"http://ollama:11434"})
	viper.SetDefault("llm.model", "llama3.1:8b-instruct")
	viper.SetDefault("llm.max_tokens", 100)
	viper.SetDefault("tts.piper_url", "http://tts:5000")
	viper.SetDefault("tts.voice", "")
	viper.SetDefault("files.temp_dir", "data/temp")
	viper.SetDefault("files.max_upload_bytes", 10*1024*1024)
}

func Load() (*Settings, error) {
	setDefaults()

	viper.AutomaticEnv()
	viper.SetConfigName("config_" + genEnv())
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")

	// Missing file is fine, defaults cover everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var settings Settings
	if err := viper.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &settings, nil
}

func genEnv() string {
	env := viper.GetString("ENV")
	if env == "" {
		return "dev"
	}
	return env
}
