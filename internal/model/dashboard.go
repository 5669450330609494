package model

import (
	"time"
)

type CourseProgress struct {
	ID               uint      `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Thumbnail        string    `json:"thumbnail"`
	AccessGranted    time.Time `json:"accessGranted"`
	TotalModules     int       `json:"totalModules"`
	CompletedModules int       `json:"completedModules"`
	OverallProgress  float64   `json:"overallProgress"`
}

type RecentActivity struct {
	ModuleID          uint      `json:"moduleId"`
	ModuleTitle       string    `json:"moduleTitle"`
	CourseTitle       string    `json:"courseTitle"`
	LastWatched       time.Time `json:"lastWatched"`
	WatchedPercentage float64   `json:"watchedPercentage"`
}

type DashboardStats struct {
	TotalCourses     int     `json:"totalCourses"`
	CompletedCourses int     `json:"completedCourses"`
	TotalWatchTime   float64 `json:"totalWatchTime"`
}

type Dashboard struct {
	Courses        []CourseProgress `json:"courses"`
	RecentActivity []RecentActivity `json:"recentActivity"`
	Stats          DashboardStats   `json:"stats"`
}
