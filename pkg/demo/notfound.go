package demo

import (
	"loam.dev/pkg/cmd"
	"loam.dev/pkg/msg"
	"loam.dev/pkg/page"
	"loam.dev/pkg/view"
)

// NotFoundPage is shown for paths no other page handles.
type NotFoundPage struct{}

// NotFoundState holds the path that was not found.
type NotFoundState struct{ Path string }

func (NotFoundPage) Init(r Route, _ Shared) (NotFoundState, []cmd.Cmd[pageMsg[struct{}]]) {
	return NotFoundState{r.(NotFound).Path}, []cmd.Cmd[pageMsg[struct{}]]{
		cmd.Now(msg.Ready[struct{}, Route]())}
}

func (NotFoundPage) Update(s NotFoundState, _ struct{}) (NotFoundState, []cmd.Cmd[pageMsg[struct{}]]) {
	return s, nil
}

func (NotFoundPage) View(s NotFoundState, _ msg.Dispatch[struct{}, Route]) view.Node {
	return view.Column(
		view.Styled(view.Theme.Error, view.Textf("Nothing at %s.", s.Path)),
		hint("Press h to go home."),
	)
}

func (NotFoundPage) ContextualActions(NotFoundState) []page.Action[Route] {
	return []page.Action[Route]{{Key: "h", Label: "Home", Route: Landing{}}}
}

func (NotFoundPage) Metadata(s NotFoundState) page.Metadata {
	return page.Metadata{Title: "Not found", Description: s.Path}
}
