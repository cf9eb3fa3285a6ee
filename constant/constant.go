package constant

type MatchStatus string

const (
	MatchStatusUploaded   MatchStatus = "UPLOADED"
	MatchStatusProcessing MatchStatus = "PROCESSING"
	MatchStatusDone       MatchStatus = "DONE"
	MatchStatusError      MatchStatus = "ERROR"
)

func (s MatchStatus) String() string {
	return string(s)
}

type JobType string

const (
	JobTypeTranscodeAndAnalyze JobType = "TRANSCODE_AND_ANALYZE"
)

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
