// Package exercises содержит общий формат тела запроса для обработчиков упражнений.
package exercises

import "github.com/magabrotheeeer/last-exercise/internal/models"

// TypeRequest описывает подход внутри упражнения.
type TypeRequest struct {
	ID                  string `json:"id"`
	Name                string `json:"name" validate:"max=200"`
	SeriesCardNumber    *int   `json:"seriesCardNumber"`
	SeriesCardsColor    string `json:"seriesCardsColor" validate:"max=32"`
	CardTextColor       string `json:"cardTextColor" validate:"max=32"`
	Order               int    `json:"order" validate:"min=0"`
	NumberOfRepetitions *int   `json:"numberOfRepetitions"`
}

// Request — тело запроса на создание или изменение упражнения.
type Request struct {
	Name          string        `json:"name" validate:"max=200"`
	UserID        string        `json:"userId"`
	Duration      string        `json:"duration" validate:"max=64"`
	CardColor     string        `json:"cardColor" validate:"max=32"`
	TextColor     string        `json:"textColor" validate:"max=32"`
	Order         int           `json:"order" validate:"min=0"`
	ExerciseTypes []TypeRequest `json:"exerciseTypes" validate:"dive"`
}

// Input переводит тело запроса во входные данные сервиса.
func (r Request) Input() models.ExerciseInput {
	in := models.ExerciseInput{
		Name:          r.Name,
		UserID:        r.UserID,
		Duration:      r.Duration,
		CardColor:     r.CardColor,
		TextColor:     r.TextColor,
		Order:         r.Order,
		ExerciseTypes: make([]models.ExerciseType, 0, len(r.ExerciseTypes)),
	}
	for _, t := range r.ExerciseTypes {
		in.ExerciseTypes = append(in.ExerciseTypes, models.ExerciseType{
			ID:                  t.ID,
			Name:                t.Name,
			SeriesCardNumber:    t.SeriesCardNumber,
			SeriesCardsColor:    t.SeriesCardsColor,
			CardTextColor:       t.CardTextColor,
			Order:               t.Order,
			NumberOfRepetitions: t.NumberOfRepetitions,
		})
	}
	return in
}
