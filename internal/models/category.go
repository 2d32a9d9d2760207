package models

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryWorkout  Category = "workout"
	CategoryCoding   Category = "coding"
	CategorySelfcare Category = "selfcare"
	CategorySleep    Category = "sleep"
	CategoryRelax    Category = "relax"
	CategoryCooking  Category = "cooking"
	CategoryReading  Category = "reading"
	CategoryWorking  Category = "working"
	CategoryEvent    Category = "event"
	CategoryOther    Category = "other"
)

// Categories lists every category in picker order.
var Categories = []Category{
	CategoryWorkout,
	CategoryCoding,
	CategorySelfcare,
	CategorySleep,
	CategoryRelax,
	CategoryCooking,
	CategoryReading,
	CategoryWorking,
	CategoryEvent,
	CategoryOther,
}

var categoryColors = map[Category]string{
	CategoryWorkout:  "#FFB3BA",
	CategoryCoding:   "#B4E4FF",
	CategorySelfcare: "#FFD1DC",
	CategorySleep:    "#C7CEEA",
	CategoryRelax:    "#B5EAD7",
	CategoryCooking:  "#FFDAB9",
	CategoryReading:  "#E2F0CB",
	CategoryWorking:  "#A0C4FF",
	CategoryEvent:    "#FFB3D9",
	CategoryOther:    "#D3D3D3",
}

var categoryEmojis = map[Category]string{
	CategoryWorkout:  "🏋️",
	CategoryCoding:   "💻",
	CategorySelfcare: "💆",
	CategorySleep:    "😴",
	CategoryRelax:    "🛋️",
	CategoryCooking:  "🍳",
	CategoryReading:  "📚",
	CategoryWorking:  "💼",
	CategoryEvent:    "🎉",
	CategoryOther:    "📌",
}

// ParseCategory accepts any known category name or the empty string.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return c, nil
	}
	if _, ok := categoryColors[c]; !ok {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Normalize maps the empty and unknown categories to other.
func (c Category) Normalize() Category {
	if _, ok := categoryColors[c]; ok {
		return c
	}
	return CategoryOther
}

func (c Category) Color() string {
	return categoryColors[c.Normalize()]
}

func (c Category) Emoji() string {
	return categoryEmojis[c.Normalize()]
}
