package service

import (
	"github.com/shubh389/College-ti/config"
	"github.com/shubh389/College-ti/internal/ingest"
)

// PipelineOptions 将应用配置转换为流水线参数
func PipelineOptions(cfg *config.Config) ingest.Options {
	opts := ingest.DefaultOptions()
	if cfg == nil {
		return opts
	}

	r := cfg.Roster
	if r.IdentifierPrefix != "" {
		opts.Tokenizer.IdentifierPrefix = r.IdentifierPrefix
	}
	if r.IdentifierMinDigits > 0 {
		opts.Tokenizer.IdentifierMinDigits = r.IdentifierMinDigits
	}
	if len(r.Keywords) > 0 {
		opts.Tokenizer.Keywords = r.Keywords
	}
	if len(r.TwoWordMarkers) > 0 {
		opts.Tokenizer.TwoWordMarkers = r.TwoWordMarkers
	}

	opts.Classifier.Labels = r.LabelTable()
	if len(r.AdminMarkers) > 0 {
		opts.Classifier.AdminMarkers = r.AdminMarkers
	}
	if len(r.ExcludedCodes) > 0 {
		opts.Classifier.ExcludedCodes = r.ExcludedCodes
	}
	if r.EmailDomain != "" {
		opts.Classifier.EmailDomain = r.EmailDomain
	}

	a := cfg.Attendance
	if a.WindowDays > 0 {
		opts.WindowDays = a.WindowDays
	}
	if a.ShortDayMinutes > 0 {
		opts.ShortDayMinutes = a.ShortDayMinutes
	}
	if a.LeaveCreditDivisor > 0 {
		opts.LeaveCreditDivisor = a.LeaveCreditDivisor
	}
	opts.Location = a.Location()
	return opts
}
