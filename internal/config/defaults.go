package config

const (
	defaultCacheDir             = "~/.cache/quaver"
	defaultLogDir               = "~/.local/share/quaver/logs"
	defaultLogFormat            = "auto"
	defaultLogLevel             = "info"
	defaultWorkers              = 4
	defaultMusicBrainzBaseURL   = "https://musicbrainz.org/ws/2"
	defaultMusicBrainzUserAgent = "quaver/dev (https://codeberg.org/quaver/quaver)"
	defaultMusicBrainzTimeout   = 30
)

// defaultScanExtensions lists the audio formats scanned when a group declares
// no filter of its own. The list is an explicit configuration value so users
// can widen or narrow it without touching code.
func defaultScanExtensions() []string {
	return []string{"mp3", "ogg", "flac", "wav", "aiff", "m4a"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir,
			LogDir:   defaultLogDir,
		},
		Library: Library{
			ScanExtensions: defaultScanExtensions(),
		},
		MusicBrainz: MusicBrainz{
			Enabled:        true,
			BaseURL:        defaultMusicBrainzBaseURL,
			UserAgent:      defaultMusicBrainzUserAgent,
			TimeoutSeconds: defaultMusicBrainzTimeout,
		},
		Workflow: Workflow{
			Workers: defaultWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
