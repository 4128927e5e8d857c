package config

const (
	defaultDataDir          = "~/.local/share/moviely"
	defaultProjectsDir      = "~/.local/share/moviely/projects"
	defaultTemplatesDir     = "~/.local/share/moviely/templates"
	defaultDownloadDir      = "~/.local/share/moviely/downloads"
	defaultOutputDir        = "~/.local/share/moviely/output"
	defaultLogDir           = "~/.local/share/moviely/logs"
	defaultStorageBackend   = BackendJSON
	defaultSQLitePath       = "~/.local/share/moviely/moviely.db"
	defaultRedisAddr        = "127.0.0.1:6379"
	defaultRedisPrefix      = "moviely:project:"
	defaultFFmpegBinary     = "ffmpeg"
	defaultFFprobeBinary    = "ffprobe"
	defaultCodec            = "libx264"
	defaultPreset           = "medium"
	defaultAudioCodec       = "aac"
	defaultSearchLimit      = 10
	defaultSearchTimeout    = 30
	defaultSearchRate       = 2.0
	defaultPexelsBaseURL    = "https://api.pexels.com"
	defaultPixabayBaseURL   = "https://pixabay.com/api"
	defaultJamendoBaseURL   = "https://api.jamendo.com/v3.0"
	defaultAPIBind          = "127.0.0.1:7490"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultConfigPathString = "~/.config/moviely/config.toml"
)

// Storage backend names.
const (
	BackendMemory = "memory"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:      defaultDataDir,
			ProjectsDir:  defaultProjectsDir,
			TemplatesDir: defaultTemplatesDir,
			DownloadDir:  defaultDownloadDir,
			OutputDir:    defaultOutputDir,
			LogDir:       defaultLogDir,
		},
		Storage: Storage{
			Backend:     defaultStorageBackend,
			SQLitePath:  defaultSQLitePath,
			RedisAddr:   defaultRedisAddr,
			RedisPrefix: defaultRedisPrefix,
		},
		Render: Render{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			Codec:         defaultCodec,
			Preset:        defaultPreset,
			AudioCodec:    defaultAudioCodec,
		},
		Search: Search{
			DefaultLimit:      defaultSearchLimit,
			TimeoutSeconds:    defaultSearchTimeout,
			RequestsPerSecond: defaultSearchRate,
			PexelsBaseURL:     defaultPexelsBaseURL,
			PixabayBaseURL:    defaultPixabayBaseURL,
			JamendoBaseURL:    defaultJamendoBaseURL,
		},
		Server: Server{
			Bind: defaultAPIBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
