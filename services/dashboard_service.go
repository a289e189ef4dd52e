package services

import (
	"fmt"
	"strings"

	"github.com/Sarsen13/event-management/models"
)

// SportFilterAll отключает фильтр по виду спорта.
const SportFilterAll = "all"

const (
	emptyDashboardMessage = "No events yet. Create one to get started!"
	noMatchesMessage      = "No events match your search."
)

// DashboardView — результат фильтрации уже загруженного списка событий.
// Пересчитывается в памяти, без дополнительных запросов к БД.
type DashboardView struct {
	Events       []models.Event `json:"events"`
	Total        int            `json:"total"`
	Label        string         `json:"label,omitempty"`
	EmptyMessage string         `json:"empty_message,omitempty"`
}

// FilterEvents возвращает пересечение двух независимых предикатов:
// подстрочный поиск по имени без учёта регистра и точное совпадение
// вида спорта (или "all").
func FilterEvents(events []models.Event, search, sportType string) []models.Event {
	search = strings.ToLower(search)
	filtered := make([]models.Event, 0, len(events))
	for _, e := range events {
		matchesSearch := strings.Contains(strings.ToLower(e.Name), search)
		matchesSport := sportType == "" || sportType == SportFilterAll || string(e.SportType) == sportType
		if matchesSearch && matchesSport {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// BuildDashboard собирает отфильтрованный список вместе с подписью вида
// "Showing 1 of 2 events" и сообщением для пустого результата. Пустой
// исходный список и пустой результат поиска — разные сообщения.
func BuildDashboard(events []models.Event, search, sportType string) DashboardView {
	filtered := FilterEvents(events, search, sportType)

	view := DashboardView{
		Events: filtered,
		Total:  len(events),
	}
	if len(filtered) == 0 {
		if len(events) == 0 {
			view.EmptyMessage = emptyDashboardMessage
		} else {
			view.EmptyMessage = noMatchesMessage
		}
		return view
	}

	noun := "events"
	if len(events) == 1 {
		noun = "event"
	}
	view.Label = fmt.Sprintf("Showing %d of %d %s", len(filtered), len(events), noun)
	return view
}
