package locate

import (
	"behat-locator/internal/domain/dom"
	"behat-locator/internal/domain/entity"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var containerSelectors = map[entity.ContainerName]cascadia.Selector{
	entity.ContainerHTML:        cascadia.MustCompile("html"),
	entity.ContainerToast:       cascadia.MustCompile("ion-app ion-toast.hydrated"),
	entity.ContainerAlert:       cascadia.MustCompile("ion-app ion-alert.hydrated"),
	entity.ContainerActionSheet: cascadia.MustCompile("ion-app ion-action-sheet.hydrated"),
	entity.ContainerModal:       cascadia.MustCompile("ion-app ion-modal.hydrated"),
	entity.ContainerPopover:     cascadia.MustCompile("ion-app ion-popover.hydrated"),
	entity.ContainerUserTour:    cascadia.MustCompile("core-user-tours-user-tour.is-active"),
}

var (
	// Used for the default container and for names without their own
	// selector (page, split-view content).
	fallbackContainers = cascadia.MustCompile(
		"ion-alert, ion-popover, ion-action-sheet, ion-modal, core-user-tours-user-tour.is-active, page-core-mainmenu, ion-app",
	)

	toastContent     = cascadia.MustCompile(".toast-container")
	visiblePage      = cascadia.MustCompile(".ion-page:not(.ion-page-hidden)")
	hiddenPage       = cascadia.MustCompile(".ion-page.ion-page-hidden")
	splitViewContent = cascadia.MustCompile("core-split-view ion-router-outlet")
)

// TopContainer returns the root node a search in the named container
// starts from, or nil when the app shows no such container.
func (r *Resolver) TopContainer(tree *dom.Tree, name entity.ContainerName) *html.Node {
	sel, ok := containerSelectors[name]
	if !ok {
		sel = fallbackContainers
	}

	candidates := dom.QueryAll(tree.Document, sel)
	if name == entity.ContainerToast {
		for i, c := range candidates {
			if root := tree.ShadowRoot(c); root != nil {
				if content := dom.Query(root, toastContent); content != nil {
					candidates[i] = content
				}
			}
		}
	}

	top := highestZIndex(tree, candidates)
	if top == nil {
		r.logger.Debug("no container", "container", name.String())
		return nil
	}

	if name == entity.ContainerPage || name == entity.ContainerSplitViewContent {
		for _, page := range dom.QueryAll(top, visiblePage) {
			if dom.Closest(page, hiddenPage) == nil {
				top = page
				break
			}
		}

		if name == entity.ContainerSplitViewContent {
			top = dom.Query(top, splitViewContent)
		}
	}

	return top
}

// highestZIndex picks the candidate rendered on top. The first one wins a
// tie.
func highestZIndex(tree *dom.Tree, candidates []*html.Node) *html.Node {
	var (
		top  *html.Node
		topZ int
	)
	for _, c := range candidates {
		z := tree.ZIndex(c)
		if top == nil || z > topZ {
			top, topZ = c, z
		}
	}
	return top
}
