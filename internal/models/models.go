package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repeat policies for reminders. Once-reminders are tied to an optional
// calendar date; the others recur anchored on the creation timestamp.
const (
	RepeatOnce    = "once"
	RepeatDaily   = "daily"
	RepeatWeekly  = "weekly"
	RepeatMonthly = "monthly"
)

// Reminder categories with their presentation icon and accent color.
const (
	CategoryExercise   = "exercise"
	CategoryWater      = "water"
	CategoryMedication = "medication"
	CategoryMeal       = "meal"
	CategorySleep      = "sleep"
	CategoryOther      = "other"
)

type CategoryInfo struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

var Categories = map[string]CategoryInfo{
	CategoryExercise:   {Icon: "🏃", Color: "#f59e0b"},
	CategoryWater:      {Icon: "💧", Color: "#3b82f6"},
	CategoryMedication: {Icon: "💊", Color: "#ef4444"},
	CategoryMeal:       {Icon: "🍽️", Color: "#10b981"},
	CategorySleep:      {Icon: "😴", Color: "#8b5cf6"},
	CategoryOther:      {Icon: "🔔", Color: "#6b7280"},
}

func ValidCategory(c string) bool {
	_, ok := Categories[c]
	return ok
}

func ValidRepeat(r string) bool {
	switch r {
	case RepeatOnce, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return true
	}
	return false
}

// Reminder is a stored reminder definition. Time is wall-clock "HH:MM"
// with no timezone conversion; Date applies only to once-reminders.
// CreatedAt anchors weekly and monthly recurrence.
type Reminder struct {
	ID              int        `json:"reminder_id"`
	UserID          int        `json:"user_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Time            string     `json:"reminder_time"`
	Date            *time.Time `json:"reminder_date,omitempty"`
	Category        string     `json:"category"`
	Repeat          string     `json:"repeat_type"`
	Active          bool       `json:"is_active"`
	Completed       bool       `json:"is_completed"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type CreateReminderRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Time        string `json:"reminder_time"`
	Date        string `json:"reminder_date,omitempty"`
	Category    string `json:"category,omitempty"`
	Repeat      string `json:"repeat_type,omitempty"`
}

type UpdateReminderRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Time        string `json:"reminder_time"`
	Category    string `json:"category"`
	Repeat      string `json:"repeat_type"`
}

// DueReminder is the trimmed view returned by the due-query.
type DueReminder struct {
	ID          int    `json:"reminder_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Time        string `json:"reminder_time"`
	Category    string `json:"category"`
}

type DueRemindersResponse struct {
	Success     bool          `json:"success"`
	Reminders   []DueReminder `json:"reminders"`
	CurrentTime string        `json:"current_time"`
}

type Profile struct {
	UserID        int        `json:"user_id"`
	HeightCm      float64    `json:"height_cm"`
	WeightKg      float64    `json:"weight_kg"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Gender        string     `json:"gender,omitempty"`
	ActivityLevel string     `json:"activity_level,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type BMIRecord struct {
	ID       int       `json:"id"`
	UserID   int       `json:"user_id"`
	HeightCm float64   `json:"height_cm"`
	WeightKg float64   `json:"weight_kg"`
	Value    float64   `json:"bmi_value"`
	Category string    `json:"bmi_category"`
	Notes    string    `json:"notes,omitempty"`
	Recorded time.Time `json:"recorded_at"`
}

type DailyActivity struct {
	ID              int       `json:"id"`
	UserID          int       `json:"user_id"`
	Date            string    `json:"activity_date"`
	Steps           int       `json:"steps_count"`
	WaterGlasses    int       `json:"water_intake_glasses"`
	SleepHours      float64   `json:"sleep_hours"`
	ExerciseMinutes int       `json:"exercise_minutes"`
	CaloriesBurned  int       `json:"calories_burned"`
	CreatedAt       time.Time `json:"created_at"`
}

type LogActivityRequest struct {
	Date            string  `json:"activity_date,omitempty"`
	Steps           int     `json:"steps_count"`
	WaterGlasses    int     `json:"water_intake_glasses"`
	SleepHours      float64 `json:"sleep_hours"`
	ExerciseMinutes int     `json:"exercise_minutes"`
	CaloriesBurned  int     `json:"calories_burned"`
}

type PushSubscription struct {
	ID       int    `json:"id"`
	UserID   int    `json:"user_id"`
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
	Remember bool   `json:"remember,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember,omitempty"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
