package entity

import "strings"

// ContainerName is a logical region of the app used as search root.
type ContainerName string

const (
	ContainerDefault          ContainerName = ""
	ContainerHTML             ContainerName = "html"
	ContainerToast            ContainerName = "toast"
	ContainerAlert            ContainerName = "alert"
	ContainerActionSheet      ContainerName = "action-sheet"
	ContainerModal            ContainerName = "modal"
	ContainerPopover          ContainerName = "popover"
	ContainerUserTour         ContainerName = "user-tour"
	ContainerPage             ContainerName = "page"
	ContainerSplitViewContent ContainerName = "split-view content"
)

// ParseContainerName accepts the names used by behat steps. Unknown names
// map to ContainerDefault.
func ParseContainerName(s string) ContainerName {
	switch name := ContainerName(strings.ToLower(strings.TrimSpace(s))); name {
	case ContainerHTML, ContainerToast, ContainerAlert, ContainerActionSheet,
		ContainerModal, ContainerPopover, ContainerUserTour, ContainerPage, ContainerSplitViewContent:
		return name
	case "split-view-content", "split view content":
		return ContainerSplitViewContent
	default:
		return ContainerDefault
	}
}

func (c ContainerName) String() string {
	if c == ContainerDefault {
		return "default"
	}
	return string(c)
}
