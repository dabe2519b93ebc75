package syncscore

import "github.com/okian/rhythm/internal/domain/quiz"

func windowsFor(school, study float64) quiz.Windows {
	return quiz.Windows{
		School:     quiz.Window{Start: school, Duration: 6},
		Study:      quiz.Window{Start: study, Duration: 3},
		SchoolWake: school - 1,
	}
}

func hourPtr(v float64) *float64 { return &v }
