package entity

import "behat-locator/internal/domain/dom"

// ElementInfo describes a resolved element to callers outside the page.
type ElementInfo struct {
	Handle dom.Handle `json:"handle"`
	Tag    string     `json:"tag"`
	Text   string     `json:"text"`
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}
