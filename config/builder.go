package config

import (
	contestwatch "github.com/jpalmerr/contestwatch"
)

// BuildOptions converts parsed configuration into SDK options for
// [contestwatch.New]. Options that need runtime values, such as a logger
// or callbacks, are appended by the caller.
func BuildOptions(cfg *Config) []contestwatch.Option {
	opts := []contestwatch.Option{
		contestwatch.WithAPIBaseURL(cfg.APIBaseURL),
		contestwatch.WithContest(cfg.ContestID),
		contestwatch.WithUsername(cfg.Username),
		contestwatch.WithPort(cfg.Port),
		contestwatch.WithDefaultLanguage(cfg.Language),
		contestwatch.WithRequestTimeout(cfg.RequestTimeout.Duration()),
		contestwatch.WithLeaderboardInterval(cfg.LeaderboardInterval.Duration()),
		contestwatch.WithSubmissionInterval(cfg.SubmissionInterval.Duration()),
	}

	if cfg.Title != "" {
		opts = append(opts, contestwatch.WithTitle(cfg.Title))
	}

	return opts
}
