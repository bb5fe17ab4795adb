package config

const (
	defaultDataDir              = "~/.local/share/tally"
	defaultLogDir               = "~/.local/share/tally/logs"
	defaultExportDir            = "~/.local/share/tally/exports"
	defaultBind                 = "127.0.0.1:7823"
	defaultRequestTimeout       = 30
	defaultIdleTimeoutSeconds   = 300
	defaultDailyGoalMinutes     = 480
	defaultActivityFlushSeconds = 30
	defaultDataRetentionDays    = 90
	defaultPomodoroLength       = 25
	defaultBreakLength          = 5
	defaultLongBreakLength      = 15
	defaultUntilLongBreak       = 4
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			ExportDir: defaultExportDir,
		},
		Server: Server{
			Bind:                  defaultBind,
			RequestTimeoutSeconds: defaultRequestTimeout,
		},
		Tracking: Tracking{
			IdleTimeoutSeconds:   defaultIdleTimeoutSeconds,
			DailyGoalMinutes:     defaultDailyGoalMinutes,
			ActivityFlushSeconds: defaultActivityFlushSeconds,
			DataRetentionDays:    defaultDataRetentionDays,
		},
		Pomodoro: Pomodoro{
			Length:          defaultPomodoroLength,
			BreakLength:     defaultBreakLength,
			LongBreakLength: defaultLongBreakLength,
			UntilLongBreak:  defaultUntilLongBreak,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
