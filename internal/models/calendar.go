package models

import "time"

type CalendarEvent struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	StartDate    time.Time  `json:"startDate"`
	ReminderTime *time.Time `json:"reminderTime,omitempty"`
	IsCompleted  bool       `json:"isCompleted"`
}

type CalendarEventInput struct {
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	StartDate    *time.Time `json:"startDate"`
	ReminderTime *time.Time `json:"reminderTime,omitempty"`
}

type CalendarEventUpdate struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	ReminderTime *time.Time `json:"reminderTime,omitempty"`
	IsCompleted  *bool      `json:"isCompleted,omitempty"`
}

func (u CalendarEventUpdate) Apply(e CalendarEvent) CalendarEvent {
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.StartDate != nil {
		e.StartDate = *u.StartDate
	}
	if u.ReminderTime != nil {
		e.ReminderTime = u.ReminderTime
	}
	if u.IsCompleted != nil {
		e.IsCompleted = *u.IsCompleted
	}
	return e
}
