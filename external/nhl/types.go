package nhl

type scheduleResponse struct {
	GameWeek []gameDay `json:"gameWeek"`
}

type gameDay struct {
	Date  string         `json:"date"`
	Games []scheduleGame `json:"games"`
}

type scheduleGame struct {
	ID             int64  `json:"id"`
	Season         int64  `json:"season"`
	StartTimeUTC   string `json:"startTimeUTC"`
	VenueUTCOffset string `json:"venueUTCOffset"`
}

type teamRef struct {
	ID int64 `json:"id"`
}

type periodDescriptor struct {
	PeriodType string `json:"periodType"`
}

type landingResponse struct {
	ID       int64          `json:"id"`
	Season   int64          `json:"season"`
	GameDate string         `json:"gameDate"`
	HomeTeam teamRef        `json:"homeTeam"`
	AwayTeam teamRef        `json:"awayTeam"`
	Summary  landingSummary `json:"summary"`
}

type landingSummary struct {
	Scoring []scoringPeriod `json:"scoring"`
}

type scoringPeriod struct {
	PeriodDescriptor periodDescriptor `json:"periodDescriptor"`
	Goals            []landingGoal    `json:"goals"`
}

type landingGoal struct {
	EventID               int64   `json:"eventId"`
	PPTReplayURL          *string `json:"pptReplayUrl"`
	HomeTeamDefendingSide string  `json:"homeTeamDefendingSide"`
	IsHome                bool    `json:"isHome"`
}

type playByPlayResponse struct {
	ID       int64       `json:"id"`
	Season   int64       `json:"season"`
	GameDate string      `json:"gameDate"`
	HomeTeam teamRef     `json:"homeTeam"`
	Plays    []playEvent `json:"plays"`
}

type playEvent struct {
	EventID               int64            `json:"eventId"`
	TypeDescKey           string           `json:"typeDescKey"`
	HomeTeamDefendingSide string           `json:"homeTeamDefendingSide"`
	PPTReplayURL          *string          `json:"pptReplayUrl"`
	PeriodDescriptor      periodDescriptor `json:"periodDescriptor"`
	Details               *playDetails     `json:"details"`
}

type playDetails struct {
	EventOwnerTeamID *int64 `json:"eventOwnerTeamId"`
}

type boxscoreResponse struct {
	HomeTeam teamRef `json:"homeTeam"`
}
