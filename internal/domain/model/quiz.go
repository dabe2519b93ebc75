package model

// QuizResponses holds the categorical answers of the onboarding questionnaire.
// Any answer may be empty.
type QuizResponses struct {
	NaturalWake       string `json:"naturalWake,omitempty"`
	FocusTime         string `json:"focusTime,omitempty"`
	TestTime          string `json:"testTime,omitempty"`
	SchoolStart       string `json:"schoolStart,omitempty"`
	HomeworkTime      string `json:"homeworkTime,omitempty"`
	MorningGrogginess string `json:"morningGrogginess,omitempty"`
	WeekendBedtime    string `json:"weekendBedtime,omitempty"`
}

// TimingInsight is an external feedback signal about the user's best hour.
type TimingInsight struct {
	Correlation float64 `json:"correlation"`
	OptimalHour float64 `json:"optimalHour"`
}
