// Package models содержит доменные структуры упражнений и их подходов (типов).
package models

import "time"

// Значения оформления по умолчанию.
const (
	DefaultCardColor = "#005A92"
	DefaultTextColor = "#fff"
	DefaultOrder     = 1
)

// Exercise представляет упражнение пользователя.
// Каждое упражнение принадлежит ровно одному пользователю.
type Exercise struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	UserID        string         `json:"userId"`
	Duration      string         `json:"duration,omitempty"` // Произвольная строка, например "10m"
	ExerciseTypes []ExerciseType `json:"exerciseTypes"`
	CardColor     string         `json:"cardColor"`
	TextColor     string         `json:"textColor"`
	Order         int            `json:"order"`
	Created       time.Time      `json:"created"`
	Modified      time.Time      `json:"modified"`
}

// ExerciseType — упорядоченный подход внутри упражнения.
type ExerciseType struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	ExerciseID          string    `json:"exerciseId"`
	SeriesCardNumber    *int      `json:"seriesCardNumber,omitempty"`
	SeriesCardsColor    string    `json:"seriesCardsColor"`
	CardTextColor       string    `json:"cardTextColor"`
	Order               int       `json:"order"`
	NumberOfRepetitions *int      `json:"numberOfRepetitions,omitempty"`
	Created             time.Time `json:"created"`
	Modified            time.Time `json:"modified"`
}

// ApplyDefaults заполняет незаданные атрибуты оформления упражнения и его подходов.
func (e *Exercise) ApplyDefaults() {
	if e.CardColor == "" {
		e.CardColor = DefaultCardColor
	}
	if e.TextColor == "" {
		e.TextColor = DefaultTextColor
	}
	if e.Order == 0 {
		e.Order = DefaultOrder
	}
	for i := range e.ExerciseTypes {
		t := &e.ExerciseTypes[i]
		if t.SeriesCardsColor == "" {
			t.SeriesCardsColor = DefaultCardColor
		}
		if t.CardTextColor == "" {
			t.CardTextColor = DefaultTextColor
		}
		if t.Order == 0 {
			t.Order = DefaultOrder
		}
	}
}

// ExerciseInput — данные для создания или изменения упражнения.
type ExerciseInput struct {
	Name          string
	UserID        string
	Duration      string
	CardColor     string
	TextColor     string
	Order         int
	ExerciseTypes []ExerciseType
}

// ExerciseRecorded — событие, публикуемое после отметки последнего упражнения.
type ExerciseRecorded struct {
	UserID     string    `json:"userId"`
	ExerciseID string    `json:"exerciseId"`
	Duration   string    `json:"duration"`
	Date       string    `json:"date"`
	RecordedAt time.Time `json:"recordedAt"`
}
